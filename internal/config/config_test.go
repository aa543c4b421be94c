package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("GOOGLE_TTS_API_KEY", "")
	t.Setenv("TTS_COMMAND", "")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.Audio != filepath.Join(root, "audio") {
		t.Fatalf("audio dir = %q", cfg.Paths.Audio)
	}
	if cfg.Paths.Token != filepath.Join(root, "token.json") {
		t.Fatalf("token path = %q", cfg.Paths.Token)
	}
	if cfg.Narration.Language != "ja" || cfg.Narration.MaxBodyChars != 200 {
		t.Fatalf("unexpected narration defaults: %+v", cfg.Narration)
	}
	if cfg.Thumbnail.Width != 1280 || cfg.Thumbnail.Height != 720 {
		t.Fatalf("unexpected thumbnail size %dx%d", cfg.Thumbnail.Width, cfg.Thumbnail.Height)
	}
	if cfg.Upload.Privacy != "private" || cfg.Upload.CategoryID != "22" {
		t.Fatalf("unexpected upload defaults: %+v", cfg.Upload)
	}
}

func TestLoadOverridesFromFileAndEnv(t *testing.T) {
	root := t.TempDir()
	yaml := `
paths:
  videos: out/videos
narration:
  engine: command
upload:
  privacy: Unlisted
video:
  frame_rate: 30
`
	if err := os.WriteFile(filepath.Join(root, FileName), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TTS_COMMAND", "/opt/tts/say")
	t.Setenv("RACEVIDEO_LOG_LEVEL", "debug")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.Videos != filepath.Join(root, "out", "videos") {
		t.Fatalf("videos dir = %q", cfg.Paths.Videos)
	}
	if cfg.Narration.Engine != EngineCommand || cfg.Narration.Command != "/opt/tts/say" {
		t.Fatalf("unexpected narration: %+v", cfg.Narration)
	}
	if cfg.Upload.Privacy != "unlisted" {
		t.Fatalf("privacy = %q", cfg.Upload.Privacy)
	}
	if cfg.Video.FrameRate != 30 || cfg.Video.VideoCodec != "libx264" {
		t.Fatalf("unexpected video config: %+v", cfg.Video)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"privacy":    "upload:\n  privacy: friends\n",
		"engine":     "narration:\n  engine: robot\n",
		"dimensions": "thumbnail:\n  width: -1\n",
		"frame rate": "video:\n  frame_rate: -5\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			if err := os.WriteFile(filepath.Join(root, FileName), []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(root); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("paths: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(root)
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestTodayUsesJapanTime(t *testing.T) {
	cfg := Default()
	// 2026-01-15 20:00 UTC is already 2026-01-16 in Tokyo.
	now := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	if got := cfg.Today(now); got != "2026-01-16" {
		t.Fatalf("Today = %q, want 2026-01-16", got)
	}
}
