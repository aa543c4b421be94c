// Package pipeline runs the daily article-to-video stages in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/assets"
	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
	"race-video-pipeline/internal/narration"
	"race-video-pipeline/internal/upload"
)

// Extractor reads an article file.
type Extractor interface {
	Extract(path string) (article.Record, error)
}

// Narrator writes spoken audio for text.
type Narrator interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// Thumbnailer renders the still image.
type Thumbnailer interface {
	Render(title, date, outPath string) error
}

// Composer muxes the still image with the narration. Silence backs the test
// video command.
type Composer interface {
	Compose(ctx context.Context, imagePath, audioPath, outPath string) error
	Silence(ctx context.Context, seconds float64, outPath string) error
}

// Publisher uploads the finished video.
type Publisher interface {
	Publish(ctx context.Context, videoPath string, md upload.Metadata) (upload.Result, error)
}

// Stages groups the stage implementations. Publisher may be nil, in which
// case the run stops after composing.
type Stages struct {
	Extractor   Extractor
	Narrator    Narrator
	Thumbnailer Thumbnailer
	Composer    Composer
	Publisher   Publisher
}

// Driver sequences the stages for a single date.
type Driver struct {
	cfg    *config.Config
	store  *assets.Store
	stages Stages
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// New builds a Driver.
func New(cfg *config.Config, store *assets.Store, stages Stages, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		store:  store,
		stages: stages,
		now:    time.Now,
		newID:  func() string { return uuid.NewString()[:8] },
		logger: logging.Component(logger, "pipeline"),
	}
}

// ArticlePath is the input file for date.
func (d *Driver) ArticlePath(date string) string {
	return filepath.Join(d.cfg.Paths.Posts, date+".html")
}

// RunToday runs the pipeline for the current date in the configured timezone.
func (d *Driver) RunToday(ctx context.Context) (*RunState, error) {
	return d.Run(ctx, d.cfg.Today(d.now()))
}

// Run processes posts/<date>.html. A returned error means no video was
// produced; an upload failure is recorded on the state instead.
func (d *Driver) Run(ctx context.Context, date string) (*RunState, error) {
	state := &RunState{
		RunID:       d.newID(),
		Date:        date,
		StartedAt:   d.now().UTC().Format(time.RFC3339),
		ArticleFile: d.ArticlePath(date),
	}
	logger := d.logger.With("run_id", state.RunID, "date", date)
	logger.Info("pipeline starting", "article", state.ArticleFile)

	// Nothing is written, not even the run state, until the article exists.
	if _, err := os.Stat(state.ArticleFile); err != nil {
		err = failure.Wrap(failure.ErrMissingInput, "extract", "open", fmt.Sprintf("article not found: %s", state.ArticleFile), err)
		logger.Error("pipeline failed", "error_kind", failure.KindOf(err), "error", err)
		return state, err
	}

	err := d.run(ctx, logger, state)

	state.CompletedAt = d.now().UTC().Format(time.RFC3339)
	if err != nil {
		state.Error = err.Error()
		state.ErrorKind = failure.KindOf(err)
	}
	if path, saveErr := saveState(d.cfg.Paths.Logs, state); saveErr != nil {
		logger.Warn("run state not saved", "error", saveErr)
	} else {
		logger.Debug("run state saved", "path", path)
	}

	switch {
	case err != nil:
		logger.Error("pipeline failed", "error_kind", state.ErrorKind, "error", err)
	case state.Uploaded():
		logger.Info("pipeline complete", "video", state.VideoFile, "url", state.Upload.URL)
	default:
		logger.Info("pipeline complete", "video", state.VideoFile)
	}
	return state, err
}

func (d *Driver) run(ctx context.Context, logger *slog.Logger, state *RunState) error {
	unlock, err := d.store.Lock(state.Date)
	if err != nil {
		if errors.Is(err, assets.ErrLocked) {
			return failure.Wrap(failure.ErrDependencyUnavailable, "pipeline", "lock", "another run is processing this date", err)
		}
		return failure.Wrap(failure.ErrExternalTool, "pipeline", "lock", "", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			logger.Warn("release date lock", "error", err)
		}
	}()

	logger.Info("stage", "name", "extract")
	rec, err := d.stages.Extractor.Extract(state.ArticleFile)
	if err != nil {
		return err
	}
	extracted := rec
	state.Article = &extracted
	if rec.Date != state.Date {
		// Artifacts are keyed by the run date even if the file name disagrees.
		logger.Warn("article date differs from run date", "article_date", rec.Date)
		rec.Date = state.Date
	}

	if err := d.store.EnsureDirs(); err != nil {
		return failure.Wrap(failure.ErrConfiguration, "pipeline", "ensure directories", "", err)
	}
	audio, image, video, err := d.handles(state.Date)
	if err != nil {
		return err
	}

	logger.Info("stage", "name", "narration")
	text := narration.ScriptText(rec, d.cfg.Narration.MaxBodyChars, d.cfg.Narration.Separator)
	if err := d.stages.Narrator.Synthesize(ctx, text, audio); err != nil {
		return err
	}
	state.AudioFile = audio

	logger.Info("stage", "name", "thumbnail")
	if err := d.stages.Thumbnailer.Render(d.thumbnailTitle(rec), rec.Date, image); err != nil {
		return err
	}
	state.ImageFile = image

	logger.Info("stage", "name", "compose")
	if err := d.stages.Composer.Compose(ctx, image, audio, video); err != nil {
		return err
	}
	state.VideoFile = video

	if !d.cfg.Upload.Enabled || d.stages.Publisher == nil {
		logger.Info("upload disabled, video kept locally", "video", video)
		return nil
	}

	logger.Info("stage", "name", "upload")
	md := upload.BuildMetadata(d.cfg.Upload, rec)
	state.Metadata = &md
	res, err := d.stages.Publisher.Publish(ctx, video, md)
	if err != nil {
		state.UploadError = err.Error()
		logger.Warn("upload failed, video kept locally",
			"video", video,
			"error_kind", failure.KindOf(err),
			"error", err,
		)
		return nil
	}
	state.Upload = &res
	return nil
}

func (d *Driver) thumbnailTitle(rec article.Record) string {
	if d.cfg.Thumbnail.UseArticleTitle && rec.Title != "" {
		return rec.Title
	}
	return d.cfg.Thumbnail.Title
}

func (d *Driver) handles(name string) (audio, image, video string, err error) {
	paths := make([]string, 0, 3)
	for _, k := range []assets.Kind{assets.KindAudio, assets.KindImage, assets.KindVideo} {
		h, herr := d.store.Handle(k, name)
		if herr != nil {
			return "", "", "", failure.Wrap(failure.ErrConfiguration, "pipeline", "resolve artifact", name, herr)
		}
		paths = append(paths, h.Path)
	}
	return paths[0], paths[1], paths[2], nil
}

// Fixed text drawn on the test video thumbnail.
const (
	TestVideoTitle = config.DefaultTitle + " テスト動画"
	TestVideoDate  = "2026-01-16"
)

// TestVideo renders the fixed test artifacts: a thumbnail, a stretch of silent
// audio and the composed video, all named "test".
func (d *Driver) TestVideo(ctx context.Context, seconds float64) (string, error) {
	if err := d.store.EnsureDirs(); err != nil {
		return "", failure.Wrap(failure.ErrConfiguration, "testvideo", "ensure directories", "", err)
	}
	audio, image, video, err := d.handles("test")
	if err != nil {
		return "", err
	}
	d.logger.Info("rendering test video", "seconds", seconds)

	if err := d.stages.Thumbnailer.Render(TestVideoTitle, TestVideoDate, image); err != nil {
		return "", err
	}
	if err := d.stages.Composer.Silence(ctx, seconds, audio); err != nil {
		return "", err
	}
	if err := d.stages.Composer.Compose(ctx, image, audio, video); err != nil {
		return "", fmt.Errorf("compose test video: %w", err)
	}
	d.logger.Info("test video written", "video", video)
	return video, nil
}
