// Package thumbnail draws the still frame used as the video's picture track.
package thumbnail

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"race-video-pipeline/internal/config"
	"race-video-pipeline/internal/failure"
	"race-video-pipeline/internal/logging"
)

const stage = "thumbnail"

// Renderer holds the resolved faces; build one per run.
type Renderer struct {
	width, height int
	background    color.RGBA
	text          color.RGBA
	titleFace     font.Face
	dateFace      font.Face
	titleY, dateY int
	fallbackFonts bool
	logger        *slog.Logger
}

// New resolves fonts and colours. Missing or unreadable font files fall back to
// the built-in 7x13 face; that is logged, not returned.
func New(cfg config.ThumbnailConfig, logger *slog.Logger) (*Renderer, error) {
	bg, err := ParseHexColor(cfg.Background)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, stage, "background", cfg.Background, err)
	}
	fg, err := ParseHexColor(cfg.TextColor)
	if err != nil {
		return nil, failure.Wrap(failure.ErrConfiguration, stage, "text colour", cfg.TextColor, err)
	}

	r := &Renderer{
		width:      cfg.Width,
		height:     cfg.Height,
		background: bg,
		text:       fg,
		titleY:     cfg.TitleY,
		dateY:      cfg.DateY,
		logger:     logging.Component(logger, stage),
	}

	titleFace, titleErr := LoadFace(cfg.TitleFont, cfg.TitleSize)
	dateFace, dateErr := LoadFace(cfg.DateFont, cfg.DateSize)
	if titleErr != nil || dateErr != nil {
		// Fonts are swapped as a pair so title and date always match.
		r.logger.Warn("preferred fonts unavailable, using built-in font",
			"title_font", cfg.TitleFont, "date_font", cfg.DateFont,
			"title_error", errString(titleErr), "date_error", errString(dateErr))
		titleFace, dateFace = basicfont.Face7x13, basicfont.Face7x13
		r.fallbackFonts = true
	}
	r.titleFace, r.dateFace = titleFace, dateFace
	return r, nil
}

// UsingFallbackFont reports whether the built-in face is in use.
func (r *Renderer) UsingFallbackFont() bool { return r.fallbackFonts }

// Render writes a PNG with title and date centred horizontally. Text is not
// wrapped; callers bound the title length.
func (r *Renderer) Render(title, date, outPath string) error {
	img := r.Draw(title, date)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "prepare output", outPath, err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "create", outPath, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return failure.Wrap(failure.ErrExternalTool, stage, "encode png", outPath, err)
	}
	if err := f.Close(); err != nil {
		return failure.Wrap(failure.ErrExternalTool, stage, "close", outPath, err)
	}
	r.logger.Info("thumbnail ready", "path", outPath, "width", r.width, "height", r.height, "fallback_font", r.fallbackFonts)
	return nil
}

// Draw renders the frame in memory.
func (r *Renderer) Draw(title, date string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: r.background}, image.Point{}, draw.Src)

	r.drawCentered(img, r.titleFace, title, r.titleY)
	r.drawCentered(img, r.dateFace, date, r.dateY)
	return img
}

// drawCentered places text with its top edge at y, matching how the card tools
// position text by the top-left corner.
func (r *Renderer) drawCentered(img draw.Image, face font.Face, text string, top int) {
	if text == "" {
		return
	}
	width := font.MeasureString(face, text).Ceil()
	x := (r.width - width) / 2
	baseline := top + face.Metrics().Ascent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.text),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// LoadFace parses a TrueType/OpenType file at the given point size.
func LoadFace(path string, size float64) (font.Face, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("font path not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// ParseHexColor accepts #RRGGBB or RRGGBB.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("colour %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
