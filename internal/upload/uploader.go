package upload

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"race-video-pipeline/internal/logging"
)

// Result identifies the uploaded video.
type Result struct {
	RemoteID string `json:"video_id"`
	URL      string `json:"video_url"`
}

// WatchURL is the public page for a video id.
func WatchURL(id string) string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", id)
}

// Uploader sends a file through the resumable insert endpoint.
type Uploader struct {
	chunkSize int
	logger    *slog.Logger
	opts      []option.ClientOption
}

// NewUploader builds an Uploader. chunkMB below one uses the library default.
// Extra client options are appended after the authorized HTTP client.
func NewUploader(chunkMB int, logger *slog.Logger, opts ...option.ClientOption) *Uploader {
	chunk := googleapi.DefaultUploadChunkSize
	if chunkMB > 0 {
		chunk = chunkMB * 1024 * 1024
	}
	return &Uploader{
		chunkSize: chunk,
		logger:    logging.Component(logger, stage),
		opts:      opts,
	}
}

// Upload inserts videoPath with md using the authorized client.
func (u *Uploader) Upload(ctx context.Context, client *http.Client, videoPath string, md Metadata) (Result, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return Result{}, fmt.Errorf("open video file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat video file: %w", err)
	}
	size := fi.Size()

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, u.opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("youtube service: %w", err)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       md.Title,
			Description: md.Description,
			CategoryId:  md.CategoryID,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: md.Privacy},
	}

	u.logger.Info("uploading video",
		"title", md.Title,
		"privacy", md.Privacy,
		"size_mb", fmt.Sprintf("%.1f", float64(size)/1024/1024),
	)

	lastPct := -1
	call := svc.Videos.Insert([]string{"snippet", "status"}, video).
		Media(f, googleapi.ChunkSize(u.chunkSize), googleapi.ContentType("video/mp4")).
		ProgressUpdater(func(current, _ int64) {
			pct := progressPercent(current, size)
			if pct != lastPct {
				lastPct = pct
				u.logger.Info("upload progress", "percent", pct)
			}
		}).
		Context(ctx)

	uploaded, err := call.Do()
	if err != nil {
		return Result{}, fmt.Errorf("youtube upload: %w", err)
	}
	if uploaded.Id == "" {
		return Result{}, fmt.Errorf("youtube upload: response carried no video id")
	}

	res := Result{RemoteID: uploaded.Id, URL: WatchURL(uploaded.Id)}
	u.logger.Info("upload complete", "video_id", res.RemoteID, "url", res.URL)
	return res, nil
}

// progressPercent is whole-number progress; the media total is not reported
// for streamed uploads so the file size is used instead.
func progressPercent(current, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(current * 100 / total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
