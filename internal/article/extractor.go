// Package article turns a rendered race-preview page into a narration record.
package article

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
)

const stage = "extract"

var fileDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Record is the normalized article content. Treat it as immutable.
type Record struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Date  string `json:"date"`
}

// Extractor reads article documents.
type Extractor struct {
	DefaultTitle string
	// Today returns the fallback date when the file name carries none.
	Today  func() string
	logger *slog.Logger
}

// NewExtractor builds an Extractor. today is called only when needed.
func NewExtractor(defaultTitle string, today func() string, logger *slog.Logger) *Extractor {
	if today == nil {
		today = func() string { return time.Now().Format("2006-01-02") }
	}
	return &Extractor{
		DefaultTitle: defaultTitle,
		Today:        today,
		logger:       logging.Component(logger, stage),
	}
}

// Extract parses the document at path. A missing file yields ErrMissingInput.
func (e *Extractor) Extract(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, failure.Wrap(failure.ErrMissingInput, stage, "open", fmt.Sprintf("article not found: %s", path), nil)
		}
		return Record{}, failure.Wrap(failure.ErrMissingInput, stage, "open", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return Record{}, failure.Wrap(failure.ErrExternalTool, stage, "parse", path, err)
	}

	rec := Record{
		Title: CollapseSpace(doc.Find("h1").First().Text()),
		Body:  CollapseSpace(doc.Text()),
		Date:  DateFromName(filepath.Base(path)),
	}
	if rec.Title == "" {
		rec.Title = e.DefaultTitle
	}
	if rec.Date == "" {
		rec.Date = e.Today()
	}

	e.logger.Info("article extracted", "path", path, "title", rec.Title, "date", rec.Date, "body_chars", len([]rune(rec.Body)))
	return rec, nil
}

// DateFromName returns the first YYYY-MM-DD substring of name, or "".
func DateFromName(name string) string {
	return fileDate.FindString(name)
}

// CollapseSpace folds every run of Unicode whitespace into one ASCII space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
