// Package video wraps the ffmpeg and ffprobe subprocess contracts.
package video

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/deps"
	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
)

const stage = "video"

// Composer muxes a looped still image against an audio track.
type Composer struct {
	cfg     config.VideoConfig
	ffmpeg  deps.Status
	ffprobe deps.Status
	logger  *slog.Logger
}

// NewComposer binds the encoder settings to the resolved binaries.
func NewComposer(cfg config.VideoConfig, caps deps.Capabilities, logger *slog.Logger) *Composer {
	return &Composer{
		cfg:     cfg,
		ffmpeg:  caps.FFmpeg,
		ffprobe: caps.FFprobe,
		logger:  logging.Component(logger, stage),
	}
}

// ComposeArgs is the fixed ffmpeg argument list: the image loops forever and
// -shortest cuts the output at the end of the audio.
func ComposeArgs(cfg config.VideoConfig, imagePath, audioPath, outPath string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", cfg.VideoCodec,
		"-c:a", cfg.AudioCodec,
		"-b:a", cfg.AudioBitrate,
		"-shortest",
		"-pix_fmt", cfg.PixelFormat,
		"-r", strconv.Itoa(cfg.FrameRate),
		outPath,
	}
}

// Compose runs the encoder once. Success is exit status 0; on failure the
// encoder's stderr is returned verbatim. A partial output file may remain.
func (c *Composer) Compose(ctx context.Context, imagePath, audioPath, outPath string) error {
	if !c.ffmpeg.Available {
		return failure.Wrap(failure.ErrDependencyUnavailable, stage, "compose", c.ffmpeg.Detail, nil)
	}
	for _, in := range []string{imagePath, audioPath} {
		if _, err := os.Stat(in); err != nil {
			return failure.Wrap(failure.ErrMissingInput, stage, "compose", in, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "prepare output", outPath, err)
	}

	args := ComposeArgs(c.cfg, imagePath, audioPath, outPath)
	c.logger.Info("composing video", "image", imagePath, "audio", audioPath, "output", outPath)
	c.logger.Debug("ffmpeg command", "args", strings.Join(args, " "))

	if stderr, err := c.run(ctx, c.ffmpeg.Command, args); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "ffmpeg", stderr, err)
	}

	c.logDurations(ctx, audioPath, outPath)
	c.logger.Info("video ready", "path", outPath)
	return nil
}

// Silence writes a silent MP3 of the given length using the anullsrc source.
func (c *Composer) Silence(ctx context.Context, seconds float64, outPath string) error {
	if !c.ffmpeg.Available {
		return failure.Wrap(failure.ErrDependencyUnavailable, stage, "silence", c.ffmpeg.Detail, nil)
	}
	if seconds <= 0 {
		return failure.Wrap(failure.ErrConfiguration, stage, "silence", fmt.Sprintf("duration must be positive (got %.2f)", seconds), nil)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "prepare output", outPath, err)
	}
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "anullsrc=r=44100:cl=stereo",
		"-t", strconv.FormatFloat(seconds, 'f', -1, 64),
		"-q:a", "9",
		"-acodec", "libmp3lame",
		outPath,
	}
	if stderr, err := c.run(ctx, c.ffmpeg.Command, args); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "ffmpeg silence", stderr, err)
	}
	c.logger.Info("silent audio ready", "path", outPath, "seconds", seconds)
	return nil
}

func (c *Composer) run(ctx context.Context, bin string, args []string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

func (c *Composer) logDurations(ctx context.Context, audioPath, videoPath string) {
	if !c.ffprobe.Available {
		return
	}
	audioSec, aerr := Probe(ctx, c.ffprobe.Command, audioPath)
	videoSec, verr := Probe(ctx, c.ffprobe.Command, videoPath)
	if aerr != nil || verr != nil {
		c.logger.Warn("could not measure durations", "audio_error", errString(aerr), "video_error", errString(verr))
		return
	}
	c.logger.Info("durations", "audio_seconds", audioSec, "video_seconds", videoSec)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
