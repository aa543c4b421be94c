// Package narration turns article text into a spoken MP3.
package narration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/deps"
	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
)

const stage = "narration"

// Engine performs a single synthesis call.
type Engine interface {
	Name() string
	Synthesize(ctx context.Context, text, language, outPath string) error
}

// Synthesizer bounds the input and delegates to the resolved engine.
type Synthesizer struct {
	engine   Engine
	status   deps.Status
	language string
	logger   *slog.Logger
}

// New builds a Synthesizer. A nil engine or unavailable status makes every call
// fail with ErrDependencyUnavailable.
func New(engine Engine, status deps.Status, language string, logger *slog.Logger) *Synthesizer {
	if strings.TrimSpace(language) == "" {
		language = "ja"
	}
	return &Synthesizer{
		engine:   engine,
		status:   status,
		language: language,
		logger:   logging.Component(logger, stage),
	}
}

// ScriptText is the narration read for an article: the title, the separator,
// then at most maxBody characters of the body.
func ScriptText(rec article.Record, maxBody int, separator string) string {
	body := []rune(rec.Body)
	if maxBody >= 0 && len(body) > maxBody {
		body = body[:maxBody]
	}
	return rec.Title + separator + string(body)
}

// Synthesize writes speech for text to outPath. One attempt only.
func (s *Synthesizer) Synthesize(ctx context.Context, text, outPath string) error {
	if s.engine == nil || !s.status.Available {
		detail := s.status.Detail
		if detail == "" {
			detail = "no speech engine configured"
		}
		s.logger.Error("speech synthesis unavailable", "detail", detail)
		return failure.Wrap(failure.ErrDependencyUnavailable, stage, "resolve engine", detail, nil)
	}
	if strings.TrimSpace(text) == "" {
		return failure.Wrap(failure.ErrExternalTool, stage, "synthesize", "empty narration text", nil)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "prepare output", outPath, err)
	}

	s.logger.Info("generating narration", "engine", s.engine.Name(), "language", s.language, "chars", len([]rune(text)))
	if err := s.engine.Synthesize(ctx, text, s.language, outPath); err != nil {
		s.logger.Error("narration failed", "engine", s.engine.Name(), "error", err)
		return failure.Wrap(failure.ErrExternalTool, stage, s.engine.Name(), "synthesis call failed", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return failure.Wrap(failure.ErrExternalTool, stage, s.engine.Name(), fmt.Sprintf("engine produced no audio at %s", outPath), err)
	}
	s.logger.Info("narration ready", "path", outPath, "bytes", info.Size())
	return nil
}
