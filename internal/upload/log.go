package upload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// LogEntry is the record written after each successful upload.
type LogEntry struct {
	VideoID    string `json:"video_id"`
	VideoURL   string `json:"video_url"`
	Title      string `json:"title"`
	Privacy    string `json:"privacy"`
	VideoFile  string `json:"video_file"`
	UploadedAt string `json:"uploaded_at"`
}

// LogUpload saves the upload result as JSON in dir and returns the file path.
func LogUpload(dir string, res Result, videoFile string, md Metadata, now time.Time) (string, error) {
	entry := LogEntry{
		VideoID:    res.RemoteID,
		VideoURL:   res.URL,
		Title:      md.Title,
		Privacy:    md.Privacy,
		VideoFile:  videoFile,
		UploadedAt: now.UTC().Format(time.RFC3339),
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure log directory: %w", err)
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode upload log: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("upload_%s_%s.json", now.Format("20060102_150405"), res.RemoteID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload log: %w", err)
	}
	return path, nil
}
