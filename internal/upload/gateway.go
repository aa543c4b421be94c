// Package upload authorizes against the video service and publishes rendered
// files.
//
// Credentials move through a small state machine (see Classify and Next):
// a missing or unrefreshable token triggers the loopback consent flow, an
// expired token with a refresh token is refreshed, and every new token is
// written back to the token store before the upload starts.
package upload

import (
	"context"
	"log/slog"
	"time"

	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
)

const stage = "upload"

// Gateway combines authorization and upload and records the outcome.
type Gateway struct {
	auth     *Authenticator
	uploader *Uploader
	logDir   string
	now      func() time.Time
	logger   *slog.Logger
}

// NewGateway wires an authenticator and uploader. logDir receives one JSON
// file per successful upload; an empty logDir disables the log.
func NewGateway(auth *Authenticator, uploader *Uploader, logDir string, logger *slog.Logger) *Gateway {
	return &Gateway{
		auth:     auth,
		uploader: uploader,
		logDir:   logDir,
		now:      time.Now,
		logger:   logging.Component(logger, stage),
	}
}

// Publish authorizes and uploads videoPath.
func (g *Gateway) Publish(ctx context.Context, videoPath string, md Metadata) (Result, error) {
	client, err := g.auth.Client(ctx)
	if err != nil {
		return Result{}, failure.Wrap(failure.ErrAuthentication, stage, "authorize", "", err)
	}
	res, err := g.uploader.Upload(ctx, client, videoPath, md)
	if err != nil {
		return Result{}, failure.Wrap(failure.ErrExternalTool, stage, "insert", videoPath, err)
	}
	if g.logDir != "" {
		path, err := LogUpload(g.logDir, res, videoPath, md, g.now())
		if err != nil {
			g.logger.Warn("upload log not written", "error", err)
		} else {
			g.logger.Debug("upload log written", "path", path)
		}
	}
	return res, nil
}
