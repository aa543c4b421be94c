package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/assets"
	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/deps"
	"race-video-pipeline/internal/logging"
	"race-video-pipeline/internal/narration"
	"race-video-pipeline/internal/pipeline"
	"race-video-pipeline/internal/thumbnail"
	"race-video-pipeline/internal/upload"
	"race-video-pipeline/internal/video"
)

type commandContext struct {
	// root overrides the project root; empty means RACEVIDEO_ROOT or the
	// working directory.
	root string
	// stdout receives user-facing output such as the authorization URL.
	stdout io.Writer

	once   sync.Once
	cfg    *config.Config
	logger *slog.Logger
	caps   deps.Capabilities
	err    error
}

func newCommandContext() *commandContext {
	return &commandContext{stdout: os.Stdout}
}

// ensure loads configuration, the logger, and the capability snapshot once.
func (c *commandContext) ensure() error {
	c.once.Do(func() {
		cfg, err := config.Load(c.root)
		if err != nil {
			c.err = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.err = err
			return
		}
		c.cfg = cfg
		c.logger = logger
		c.caps = deps.Resolve(cfg)
		for _, s := range c.caps.List() {
			logger.Debug("dependency", "name", s.Name, "available", s.Available, "command", s.Command, "detail", s.Detail)
		}
	})
	return c.err
}

func (c *commandContext) store() *assets.Store {
	return assets.New(c.cfg.Paths)
}

func (c *commandContext) authenticator() *upload.Authenticator {
	consent := &upload.LoopbackConsent{Out: c.stdout, Open: openBrowser}
	return upload.NewAuthenticator(c.cfg.Paths.ClientSecrets, upload.NewFileTokenStore(c.cfg.Paths.Token, c.logger), consent, c.logger)
}

// driver wires every stage from the loaded configuration.
func (c *commandContext) driver(ctx context.Context) (*pipeline.Driver, error) {
	if err := c.ensure(); err != nil {
		return nil, err
	}
	cfg := c.cfg

	engine, err := narration.NewEngine(ctx, cfg.Narration, c.caps)
	if err != nil {
		return nil, fmt.Errorf("speech engine: %w", err)
	}
	renderer, err := thumbnail.New(cfg.Thumbnail, c.logger)
	if err != nil {
		return nil, err
	}

	stages := pipeline.Stages{
		Extractor:   article.NewExtractor(cfg.Thumbnail.Title, func() string { return cfg.Today(timeNow()) }, c.logger),
		Narrator:    narration.New(engine, c.caps.Speech, cfg.Narration.Language, c.logger),
		Thumbnailer: renderer,
		Composer:    video.NewComposer(cfg.Video, c.caps, c.logger),
	}
	if cfg.Upload.Enabled {
		stages.Publisher = upload.NewGateway(
			c.authenticator(),
			upload.NewUploader(cfg.Upload.ChunkSizeMB, c.logger),
			cfg.Paths.Logs,
			c.logger,
		)
	}
	return pipeline.New(cfg, c.store(), stages, c.logger), nil
}

// openBrowser is best effort; the URL is always printed as well.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return err
		}
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
