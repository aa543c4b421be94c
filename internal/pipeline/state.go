package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/upload"
)

// RunState tracks one pipeline run and is written to the logs directory when
// the run ends, successful or not.
type RunState struct {
	RunID       string           `json:"run_id"`
	Date        string           `json:"date"`
	StartedAt   string           `json:"started_at"`
	CompletedAt string           `json:"completed_at"`
	ArticleFile string           `json:"article_file"`
	Article     *article.Record  `json:"article,omitempty"`
	AudioFile   string           `json:"audio_file,omitempty"`
	ImageFile   string           `json:"image_file,omitempty"`
	VideoFile   string           `json:"video_file,omitempty"`
	Metadata    *upload.Metadata `json:"metadata,omitempty"`
	Upload      *upload.Result   `json:"upload,omitempty"`
	UploadError string           `json:"upload_error,omitempty"`
	Error       string           `json:"error,omitempty"`
	ErrorKind   string           `json:"error_kind,omitempty"`
}

// Uploaded reports whether the video reached the remote service.
func (s *RunState) Uploaded() bool {
	return s.Upload != nil && s.Upload.RemoteID != ""
}

func saveState(dir string, state *RunState) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure log directory: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode run state: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("run_%s_%s.json", state.Date, state.RunID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run state: %w", err)
	}
	return path, nil
}
