package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/assets"
	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
	"race-video-pipeline/internal/upload"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(name string) { r.calls = append(r.calls, name) }

type fakeNarrator struct {
	rec  *recorder
	text string
	err  error
}

func (f *fakeNarrator) Synthesize(_ context.Context, text, outPath string) error {
	f.rec.add("narration")
	f.text = text
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outPath, []byte("mp3"), 0o644)
}

type fakeThumbnailer struct {
	rec   *recorder
	title string
	date  string
}

func (f *fakeThumbnailer) Render(title, date, outPath string) error {
	f.rec.add("thumbnail")
	f.title = title
	f.date = date
	return os.WriteFile(outPath, []byte("png"), 0o644)
}

type fakeComposer struct {
	rec *recorder
}

func (f *fakeComposer) Compose(_ context.Context, imagePath, audioPath, outPath string) error {
	f.rec.add("compose")
	for _, p := range []string{imagePath, audioPath} {
		if _, err := os.Stat(p); err != nil {
			return failure.Wrap(failure.ErrMissingInput, "compose", "stat", p, err)
		}
	}
	return os.WriteFile(outPath, []byte("mp4"), 0o644)
}

func (f *fakeComposer) Silence(_ context.Context, _ float64, outPath string) error {
	f.rec.add("silence")
	return os.WriteFile(outPath, []byte("silence"), 0o644)
}

type fakePublisher struct {
	rec *recorder
	md  upload.Metadata
	err error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, md upload.Metadata) (upload.Result, error) {
	f.rec.add("upload")
	f.md = md
	if f.err != nil {
		return upload.Result{}, f.err
	}
	return upload.Result{RemoteID: "vid123", URL: upload.WatchURL("vid123")}, nil
}

type fixture struct {
	root      string
	cfg       *config.Config
	rec       *recorder
	narrator  *fakeNarrator
	thumbs    *fakeThumbnailer
	publisher *fakePublisher
	driver    *Driver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Root = root
	cfgVal.Paths.Posts = filepath.Join(root, "posts")
	cfgVal.Paths.Audio = filepath.Join(root, "audio")
	cfgVal.Paths.Images = filepath.Join(root, "images")
	cfgVal.Paths.Videos = filepath.Join(root, "videos")
	cfgVal.Paths.Logs = filepath.Join(root, "logs")
	cfg := &cfgVal

	rec := &recorder{}
	f := &fixture{
		root:      root,
		cfg:       cfg,
		rec:       rec,
		narrator:  &fakeNarrator{rec: rec},
		thumbs:    &fakeThumbnailer{rec: rec},
		publisher: &fakePublisher{rec: rec},
	}
	stages := Stages{
		Extractor:   article.NewExtractor(cfg.Thumbnail.Title, func() string { return "2030-12-31" }, logging.NewNop()),
		Narrator:    f.narrator,
		Thumbnailer: f.thumbs,
		Composer:    &fakeComposer{rec: rec},
		Publisher:   f.publisher,
	}
	f.driver = New(cfg, assets.New(cfg.Paths), stages, logging.NewNop())
	f.driver.newID = func() string { return "run00001" }
	return f
}

func (f *fixture) writeArticle(t *testing.T, date, body string) {
	t.Helper()
	if err := os.MkdirAll(f.cfg.Paths.Posts, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.cfg.Paths.Posts, date+".html"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) readState(t *testing.T, date string) RunState {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.cfg.Paths.Logs, "run_"+date+"_run00001.json"))
	if err != nil {
		t.Fatalf("read run state: %v", err)
	}
	var st RunState
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("decode run state: %v", err)
	}
	return st
}

func TestRunProducesVideo(t *testing.T) {
	f := newFixture(t)
	body := strings.Repeat("あ", 250)
	f.writeArticle(t, "2026-01-16", "<html><body><h1>Race Preview</h1><p>"+body+"</p></body></html>")

	state, err := f.driver.Run(context.Background(), "2026-01-16")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(f.rec.calls, ","); got != "narration,thumbnail,compose,upload" {
		t.Fatalf("stage order = %s", got)
	}
	if state.Article.Title != "Race Preview" || state.Article.Date != "2026-01-16" {
		t.Fatalf("unexpected article: %+v", state.Article)
	}
	if !strings.HasPrefix(f.narrator.text, "Race Preview。") {
		t.Fatalf("narration text = %q", f.narrator.text)
	}
	if n := len([]rune(strings.TrimPrefix(f.narrator.text, "Race Preview。"))); n != 200 {
		t.Fatalf("narration body = %d runes, want 200", n)
	}
	if f.thumbs.title != config.DefaultTitle {
		t.Fatalf("thumbnail title = %q, want the fixed title", f.thumbs.title)
	}
	wantVideo := filepath.Join(f.root, "videos", "2026-01-16.mp4")
	if state.VideoFile != wantVideo {
		t.Fatalf("VideoFile = %s", state.VideoFile)
	}
	if _, err := os.Stat(wantVideo); err != nil {
		t.Fatalf("video missing: %v", err)
	}
	if f.publisher.md.Title != "Race Preview - 2026-01-16" {
		t.Fatalf("upload title = %q", f.publisher.md.Title)
	}
	saved := f.readState(t, "2026-01-16")
	if saved.Upload == nil || saved.Upload.RemoteID != "vid123" || saved.Error != "" {
		t.Fatalf("unexpected saved state: %+v", saved)
	}
}

func TestRunUsesArticleTitleWhenConfigured(t *testing.T) {
	f := newFixture(t)
	f.cfg.Thumbnail.UseArticleTitle = true
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")
	if _, err := f.driver.Run(context.Background(), "2026-01-16"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.thumbs.title != "Race Preview" {
		t.Fatalf("thumbnail title = %q", f.thumbs.title)
	}
}

func TestRunMissingArticle(t *testing.T) {
	f := newFixture(t)
	_, err := f.driver.Run(context.Background(), "2026-01-16")
	if !errors.Is(err, failure.ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("no stage should run, got %v", f.rec.calls)
	}
	var created []string
	_ = filepath.WalkDir(f.root, func(path string, _ os.DirEntry, err error) error {
		if err == nil && path != f.root {
			rel, _ := filepath.Rel(f.root, path)
			created = append(created, rel)
		}
		return nil
	})
	if len(created) != 0 {
		t.Fatalf("a missing article must not create anything, found %v", created)
	}
}

type fixedExtractor struct {
	rec article.Record
}

func (f fixedExtractor) Extract(string) (article.Record, error) { return f.rec, nil }

func TestRunKeysArtifactsByRunDate(t *testing.T) {
	f := newFixture(t)
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1>")
	f.driver.stages.Extractor = fixedExtractor{rec: article.Record{Title: "Race Preview", Body: "body", Date: "2026-01-15"}}

	state, err := f.driver.Run(context.Background(), "2026-01-16")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Article.Date != "2026-01-15" {
		t.Fatalf("recorded article date = %s, want the extracted 2026-01-15", state.Article.Date)
	}
	if f.thumbs.date != "2026-01-16" || f.publisher.md.Title != "Race Preview - 2026-01-16" {
		t.Fatalf("artifacts should use the run date: thumb=%s title=%q", f.thumbs.date, f.publisher.md.Title)
	}
	if saved := f.readState(t, "2026-01-16"); saved.Article == nil || saved.Article.Date != "2026-01-15" {
		t.Fatalf("saved article = %+v", saved.Article)
	}
}

func TestRunStopsWhenSynthesisUnavailable(t *testing.T) {
	f := newFixture(t)
	f.narrator.err = failure.Wrap(failure.ErrDependencyUnavailable, "narration", "resolve engine", "no speech engine configured", nil)
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")

	_, err := f.driver.Run(context.Background(), "2026-01-16")
	if !errors.Is(err, failure.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if got := strings.Join(f.rec.calls, ","); got != "narration" {
		t.Fatalf("only narration should run, got %s", got)
	}
	if _, err := os.Stat(filepath.Join(f.root, "images", "2026-01-16.png")); err == nil {
		t.Fatalf("thumbnail should not be rendered")
	}
}

func TestRunUploadFailureKeepsVideo(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = failure.Wrap(failure.ErrAuthentication, "upload", "authorize", "", errors.New("no token"))
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")

	state, err := f.driver.Run(context.Background(), "2026-01-16")
	if err != nil {
		t.Fatalf("upload failure should not fail the run: %v", err)
	}
	if state.Uploaded() || state.UploadError == "" {
		t.Fatalf("expected recorded upload error, got %+v", state)
	}
	if _, err := os.Stat(state.VideoFile); err != nil {
		t.Fatalf("video should remain on disk: %v", err)
	}
}

func TestRunUploadDisabled(t *testing.T) {
	f := newFixture(t)
	f.cfg.Upload.Enabled = false
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")
	if _, err := f.driver.Run(context.Background(), "2026-01-16"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(f.rec.calls, ","); got != "narration,thumbnail,compose" {
		t.Fatalf("stage order = %s", got)
	}
}

func TestRunRejectsConcurrentDate(t *testing.T) {
	f := newFixture(t)
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")
	unlock, err := assets.New(f.cfg.Paths).Lock("2026-01-16")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	_, err = f.driver.Run(context.Background(), "2026-01-16")
	if !errors.Is(err, assets.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if len(f.rec.calls) != 0 {
		t.Fatalf("no stage should run while locked")
	}
}

func TestRunTodayUsesConfiguredZone(t *testing.T) {
	f := newFixture(t)
	// 2026-01-15 20:00 UTC is already 2026-01-16 in Tokyo.
	f.driver.now = func() time.Time { return time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC) }
	f.writeArticle(t, "2026-01-16", "<h1>Race Preview</h1><p>body</p>")
	state, err := f.driver.RunToday(context.Background())
	if err != nil {
		t.Fatalf("RunToday: %v", err)
	}
	if state.Date != "2026-01-16" {
		t.Fatalf("Date = %s", state.Date)
	}
}

func TestTestVideo(t *testing.T) {
	f := newFixture(t)
	video, err := f.driver.TestVideo(context.Background(), 5)
	if err != nil {
		t.Fatalf("TestVideo: %v", err)
	}
	if video != filepath.Join(f.root, "videos", "test.mp4") {
		t.Fatalf("video = %s", video)
	}
	if f.thumbs.title != "競艇予想 テスト動画" || f.thumbs.date != "2026-01-16" {
		t.Fatalf("test thumbnail text = %q / %q", f.thumbs.title, f.thumbs.date)
	}
	if got := strings.Join(f.rec.calls, ","); got != "thumbnail,silence,compose" {
		t.Fatalf("stage order = %s", got)
	}
	for _, p := range []string{"images/test.png", "audio/test.mp3", "videos/test.mp4"} {
		if _, err := os.Stat(filepath.Join(f.root, p)); err != nil {
			t.Fatalf("%s missing: %v", p, err)
		}
	}
}
