package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up under the project root.
const FileName = "config.yaml"

type Config struct {
	Root      string          `yaml:"-"`
	Paths     PathsConfig     `yaml:"paths"`
	Narration NarrationConfig `yaml:"narration"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Video     VideoConfig     `yaml:"video"`
	Upload    UploadConfig    `yaml:"upload"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timezone  string          `yaml:"timezone"`
}

type PathsConfig struct {
	Posts         string `yaml:"posts"`
	Audio         string `yaml:"audio"`
	Images        string `yaml:"images"`
	Videos        string `yaml:"videos"`
	Logs          string `yaml:"logs"`
	ClientSecrets string `yaml:"client_secrets"`
	Token         string `yaml:"token"`
}

type NarrationConfig struct {
	Engine       string `yaml:"engine"` // auto | cloud | command
	Language     string `yaml:"language"`
	Voice        string `yaml:"voice"`
	Command      string `yaml:"command"`
	APIKey       string `yaml:"api_key"`
	MaxBodyChars int    `yaml:"max_body_chars"`
	Separator    string `yaml:"separator"`
}

type ThumbnailConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	Background      string  `yaml:"background"`
	TextColor       string  `yaml:"text_color"`
	Title           string  `yaml:"title"`
	UseArticleTitle bool    `yaml:"use_article_title"`
	TitleFont       string  `yaml:"title_font"`
	TitleSize       float64 `yaml:"title_size"`
	TitleY          int     `yaml:"title_y"`
	DateFont        string  `yaml:"date_font"`
	DateSize        float64 `yaml:"date_size"`
	DateY           int     `yaml:"date_y"`
}

type VideoConfig struct {
	FFmpeg       string `yaml:"ffmpeg"`
	FFprobe      string `yaml:"ffprobe"`
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	AudioBitrate string `yaml:"audio_bitrate"`
	PixelFormat  string `yaml:"pixel_format"`
	FrameRate    int    `yaml:"frame_rate"`
}

type UploadConfig struct {
	Enabled             bool   `yaml:"enabled"`
	CategoryID          string `yaml:"category_id"`
	Privacy             string `yaml:"privacy"`
	ChunkSizeMB         int    `yaml:"chunk_size_mb"`
	TitleTemplate       string `yaml:"title_template"`
	DescriptionTemplate string `yaml:"description_template"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads <root>/config.yaml on top of the defaults. A missing file is not
// an error. Environment variables (after loading <root>/.env) override the file.
func Load(root string) (*Config, error) {
	if strings.TrimSpace(root) == "" {
		root = os.Getenv("RACEVIDEO_ROOT")
	}
	if strings.TrimSpace(root) == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}

	_ = godotenv.Load(filepath.Join(abs, ".env"))

	cfg := Default()
	cfg.Root = abs

	data, err := os.ReadFile(filepath.Join(abs, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", FileName, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}

	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("RACEVIDEO_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("RACEVIDEO_LOG_FORMAT")); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("GOOGLE_TTS_API_KEY")); v != "" {
		c.Narration.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TTS_COMMAND")); v != "" {
		c.Narration.Command = v
	}
}

func (c *Config) normalize() {
	d := Default()
	c.Paths.Posts = c.resolve(orDefault(c.Paths.Posts, d.Paths.Posts))
	c.Paths.Audio = c.resolve(orDefault(c.Paths.Audio, d.Paths.Audio))
	c.Paths.Images = c.resolve(orDefault(c.Paths.Images, d.Paths.Images))
	c.Paths.Videos = c.resolve(orDefault(c.Paths.Videos, d.Paths.Videos))
	c.Paths.Logs = c.resolve(orDefault(c.Paths.Logs, d.Paths.Logs))
	c.Paths.ClientSecrets = c.resolve(orDefault(c.Paths.ClientSecrets, d.Paths.ClientSecrets))
	c.Paths.Token = c.resolve(orDefault(c.Paths.Token, d.Paths.Token))

	c.Narration.Engine = strings.ToLower(strings.TrimSpace(orDefault(c.Narration.Engine, d.Narration.Engine)))
	c.Narration.Language = orDefault(c.Narration.Language, d.Narration.Language)
	if c.Narration.MaxBodyChars <= 0 {
		c.Narration.MaxBodyChars = d.Narration.MaxBodyChars
	}

	c.Thumbnail.TitleFont = c.resolve(c.Thumbnail.TitleFont)
	c.Thumbnail.DateFont = c.resolve(c.Thumbnail.DateFont)

	c.Upload.Privacy = strings.ToLower(strings.TrimSpace(orDefault(c.Upload.Privacy, d.Upload.Privacy)))
	c.Upload.CategoryID = orDefault(c.Upload.CategoryID, d.Upload.CategoryID)
	if c.Upload.ChunkSizeMB <= 0 {
		c.Upload.ChunkSizeMB = d.Upload.ChunkSizeMB
	}
	c.Upload.TitleTemplate = orDefault(c.Upload.TitleTemplate, d.Upload.TitleTemplate)
	c.Upload.DescriptionTemplate = orDefault(c.Upload.DescriptionTemplate, d.Upload.DescriptionTemplate)
}

// resolve anchors relative paths at the project root.
func (c *Config) resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Narration.Engine {
	case EngineAuto, EngineCloud, EngineCommand:
	default:
		return fmt.Errorf("narration.engine: unsupported value %q", c.Narration.Engine)
	}
	switch c.Upload.Privacy {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("upload.privacy: unsupported value %q", c.Upload.Privacy)
	}
	if c.Thumbnail.Width <= 0 || c.Thumbnail.Height <= 0 {
		return fmt.Errorf("thumbnail: dimensions must be positive (got %dx%d)", c.Thumbnail.Width, c.Thumbnail.Height)
	}
	if c.Thumbnail.TitleSize <= 0 || c.Thumbnail.DateSize <= 0 {
		return errors.New("thumbnail: font sizes must be positive")
	}
	if c.Video.FrameRate <= 0 {
		return fmt.Errorf("video.frame_rate: must be positive (got %d)", c.Video.FrameRate)
	}
	for name, v := range map[string]string{
		"video.ffmpeg":        c.Video.FFmpeg,
		"video.video_codec":   c.Video.VideoCodec,
		"video.audio_codec":   c.Video.AudioCodec,
		"video.audio_bitrate": c.Video.AudioBitrate,
		"video.pixel_format":  c.Video.PixelFormat,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s: must not be empty", name)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location returns the zone used to derive "today". Asia/Tokyo falls back to a
// fixed +09:00 zone when tzdata is unavailable.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultTimezone {
			return time.FixedZone("JST", 9*60*60), nil
		}
		return nil, err
	}
	return loc, nil
}

// Today formats the current date in the configured zone as YYYY-MM-DD.
func (c *Config) Today(now time.Time) string {
	loc, err := c.Location()
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return now.In(loc).Format(DateLayout)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
