package narration

import (
	"context"

	"google.golang.org/api/option"

	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/deps"
)

// NewEngine picks the engine the capability snapshot resolved. It returns nil
// when nothing is available; the Synthesizer reports that as a failure.
func NewEngine(ctx context.Context, n config.NarrationConfig, caps deps.Capabilities) (Engine, error) {
	if !caps.Speech.Available {
		return nil, nil
	}
	switch caps.SpeechEngine {
	case config.EngineCloud:
		return NewCloudEngine(ctx, n.Voice, option.WithAPIKey(n.APIKey))
	case config.EngineCommand:
		return &CommandEngine{Command: caps.Speech.Command, Voice: n.Voice}, nil
	}
	return nil, nil
}
