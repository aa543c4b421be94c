package upload

import (
	"strings"

	"race-video-pipeline/internal/article"
	"race-video-pipeline/internal/config"
)

// Metadata holds the fields sent with the insert request.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Privacy     string `json:"privacy"`
}

// BuildMetadata fills the configured templates from the article record.
// {title} and {date} are the only placeholders.
func BuildMetadata(cfg config.UploadConfig, rec article.Record) Metadata {
	r := strings.NewReplacer("{title}", rec.Title, "{date}", rec.Date)
	return Metadata{
		Title:       truncateRunes(r.Replace(cfg.TitleTemplate), maxTitleRunes),
		Description: r.Replace(cfg.DescriptionTemplate),
		CategoryID:  cfg.CategoryID,
		Privacy:     cfg.Privacy,
	}
}

// maxTitleRunes is the longest title the video service accepts.
const maxTitleRunes = 100

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
