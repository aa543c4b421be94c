package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"race-video-pipeline/internal/config"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	store := New(config.PathsConfig{
		Audio:  filepath.Join(root, "audio"),
		Images: filepath.Join(root, "images"),
		Videos: filepath.Join(root, "videos"),
		Logs:   filepath.Join(root, "logs"),
	})
	return store, root
}

func TestHandlePaths(t *testing.T) {
	store, root := newTestStore(t)
	tests := []struct {
		kind Kind
		want string
	}{
		{KindAudio, filepath.Join(root, "audio", "2026-01-16.mp3")},
		{KindImage, filepath.Join(root, "images", "2026-01-16.png")},
		{KindVideo, filepath.Join(root, "videos", "2026-01-16.mp4")},
	}
	for _, tt := range tests {
		h, err := store.Handle(tt.kind, "2026-01-16")
		if err != nil {
			t.Fatalf("Handle(%s): %v", tt.kind, err)
		}
		if h.Path != tt.want || h.Date != "2026-01-16" || h.Kind != tt.kind {
			t.Fatalf("Handle(%s) = %+v, want path %s", tt.kind, h, tt.want)
		}
	}
}

func TestHandleRejectsBadInput(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.Handle(Kind("subtitle"), "2026-01-16"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if _, err := store.Handle(KindAudio, name); err == nil {
			t.Fatalf("expected error for name %q", name)
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	store, root := newTestStore(t)
	if err := store.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	for _, d := range []string{"audio", "images", "videos", "logs"} {
		if info, err := os.Stat(filepath.Join(root, d)); err != nil || !info.IsDir() {
			t.Fatalf("expected %s dir, err=%v", d, err)
		}
	}
}

func TestLockIsExclusivePerDate(t *testing.T) {
	store, _ := newTestStore(t)
	release, err := store.Lock("2026-01-16")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	if _, err := store.Lock("2026-01-16"); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock on same date: got %v, want ErrLocked", err)
	}

	other, err := store.Lock("2026-01-17")
	if err != nil {
		t.Fatalf("different date should not conflict: %v", err)
	}
	_ = other()

	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	again, err := store.Lock("2026-01-16")
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	_ = again()
}

func TestListGroupsByDate(t *testing.T) {
	store, root := newTestStore(t)
	if err := store.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	write := func(rel string, size int) {
		if err := os.WriteFile(filepath.Join(root, rel), make([]byte, size), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	write("audio/2026-01-16.mp3", 10)
	write("images/2026-01-16.png", 20)
	write("videos/2026-01-16.mp4", 30)
	write("audio/2026-01-17.mp3", 5)
	write("audio/test.mp3", 1)
	write("images/notes.txt", 1)

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 dated entries, got %+v", entries)
	}
	if entries[0].Date != "2026-01-17" || entries[1].Date != "2026-01-16" {
		t.Fatalf("entries not sorted newest first: %+v", entries)
	}
	if entries[0].Has(KindVideo) {
		t.Fatalf("2026-01-17 should have no video")
	}
	if got := entries[1].Sizes[KindVideo]; got != 30 {
		t.Fatalf("video size = %d, want 30", got)
	}
}

func TestListMissingDirs(t *testing.T) {
	store, _ := newTestStore(t)
	entries, err := store.List()
	if err != nil {
		t.Fatalf("List on missing dirs: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
