// Package assets maps (kind, date) pairs to artifact paths under the project root.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/gofrs/flock"

	"race-video-pipeline/internal/config"
)

type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Kinds lists artifact kinds in pipeline order.
var Kinds = []Kind{KindAudio, KindImage, KindVideo}

// ErrLocked is returned when another run already holds the lock for a date.
var ErrLocked = errors.New("artifacts for this date are locked by another run")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Ext returns the file extension (with dot) for the kind.
func (k Kind) Ext() string {
	switch k {
	case KindAudio:
		return ".mp3"
	case KindImage:
		return ".png"
	case KindVideo:
		return ".mp4"
	}
	return ""
}

// Handle identifies one artifact. It is a value; paths are derived, never stored.
type Handle struct {
	Kind Kind
	Date string
	Path string
}

// Store owns the audio/, images/ and videos/ directories.
type Store struct {
	dirs map[Kind]string
	logs string
}

// New builds a Store from the configured paths.
func New(paths config.PathsConfig) *Store {
	return &Store{
		dirs: map[Kind]string{
			KindAudio: paths.Audio,
			KindImage: paths.Images,
			KindVideo: paths.Videos,
		},
		logs: paths.Logs,
	}
}

// EnsureDirs creates every artifact directory.
func (s *Store) EnsureDirs() error {
	for _, k := range Kinds {
		if err := os.MkdirAll(s.dirs[k], 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", k, err)
		}
	}
	if s.logs != "" {
		if err := os.MkdirAll(s.logs, 0o755); err != nil {
			return fmt.Errorf("create logs dir: %w", err)
		}
	}
	return nil
}

// Dir returns the directory for kind.
func (s *Store) Dir(k Kind) string {
	return s.dirs[k]
}

// Handle resolves the path for (kind, name). Name is normally a date but the
// test-video command uses "test".
func (s *Store) Handle(k Kind, name string) (Handle, error) {
	dir, ok := s.dirs[k]
	if !ok || k.Ext() == "" {
		return Handle{}, fmt.Errorf("unknown artifact kind %q", k)
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return Handle{}, fmt.Errorf("invalid artifact name %q", name)
	}
	return Handle{Kind: k, Date: name, Path: filepath.Join(dir, name+k.Ext())}, nil
}

// Lock takes a non-blocking lock for the date. The returned func releases it.
func (s *Store) Lock(date string) (func() error, error) {
	dir := s.dirs[KindVideo]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}
	lock := flock.New(filepath.Join(dir, "."+date+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock for %s: %w", date, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", date, ErrLocked)
	}
	return lock.Unlock, nil
}

// Entry summarises the artifacts present for one date.
type Entry struct {
	Date  string
	Sizes map[Kind]int64
}

// Has reports whether the artifact of kind exists for the entry.
func (e Entry) Has(k Kind) bool {
	_, ok := e.Sizes[k]
	return ok
}

// List scans the artifact directories and groups files by date, newest first.
// Files that do not look like <YYYY-MM-DD><ext> are ignored.
func (s *Store) List() ([]Entry, error) {
	byDate := make(map[string]*Entry)
	for _, k := range Kinds {
		files, err := os.ReadDir(s.dirs[k])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s dir: %w", k, err)
		}
		for _, f := range files {
			if f.IsDir() || filepath.Ext(f.Name()) != k.Ext() {
				continue
			}
			date := strings.TrimSuffix(f.Name(), k.Ext())
			if !datePattern.MatchString(date) {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			e, ok := byDate[date]
			if !ok {
				e = &Entry{Date: date, Sizes: make(map[Kind]int64)}
				byDate[date] = e
			}
			e.Sizes[k] = info.Size()
		}
	}

	out := make([]Entry, 0, len(byDate))
	for _, e := range byDate {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
