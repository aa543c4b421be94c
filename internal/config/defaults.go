package config

const (
	EngineAuto    = "auto"
	EngineCloud   = "cloud"
	EngineCommand = "command"

	DefaultTimezone = "Asia/Tokyo"
	DateLayout      = "2006-01-02"

	// DefaultTitle is used when an article has no level-1 heading and as the
	// fixed thumbnail title.
	DefaultTitle = "競艇予想"
)

// Default returns the built-in configuration with paths relative to the root.
func Default() Config {
	return Config{
		Paths: PathsConfig{
			Posts:         "posts",
			Audio:         "audio",
			Images:        "images",
			Videos:        "videos",
			Logs:          "logs",
			ClientSecrets: "client_secrets.json",
			Token:         "token.json",
		},
		Narration: NarrationConfig{
			Engine:       EngineAuto,
			Language:     "ja",
			Voice:        "ja-JP-NanamiNeural",
			MaxBodyChars: 200,
			Separator:    "。",
		},
		Thumbnail: ThumbnailConfig{
			Width:      1280,
			Height:     720,
			Background: "#0066CC",
			TextColor:  "#FFFFFF",
			Title:      DefaultTitle,
			TitleFont:  "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			TitleSize:  80,
			TitleY:     200,
			DateFont:   "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			DateSize:   50,
			DateY:      400,
		},
		Video: VideoConfig{
			FFmpeg:       "ffmpeg",
			FFprobe:      "ffprobe",
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			AudioBitrate: "192k",
			PixelFormat:  "yuv420p",
			FrameRate:    24,
		},
		Upload: UploadConfig{
			Enabled:             true,
			CategoryID:          "22",
			Privacy:             "private",
			ChunkSizeMB:         8,
			TitleTemplate:       "{title} - {date}",
			DescriptionTemplate: "競艇予想の自動生成動画です。\n日付: {date}",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Timezone: DefaultTimezone,
	}
}
