package narration

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// CloudEngine calls the Google Cloud Text-to-Speech REST API.
type CloudEngine struct {
	svc   *texttospeech.Service
	voice string
}

// NewCloudEngine builds the API client. Pass option.WithAPIKey in production;
// tests add option.WithEndpoint.
func NewCloudEngine(ctx context.Context, voice string, opts ...option.ClientOption) (*CloudEngine, error) {
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech service: %w", err)
	}
	return &CloudEngine{svc: svc, voice: voice}, nil
}

func (e *CloudEngine) Name() string { return "cloud" }

func (e *CloudEngine) Synthesize(ctx context.Context, text, language, outPath string) error {
	voice := &texttospeech.VoiceSelectionParams{LanguageCode: languageTag(language)}
	// edge-tts style names (ja-JP-NanamiNeural) are meaningless to the API.
	if e.voice != "" && !strings.HasSuffix(e.voice, "Neural") {
		voice.Name = e.voice
	}

	resp, err := e.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input:       &texttospeech.SynthesisInput{Text: text},
		Voice:       voice,
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if resp.AudioContent == "" {
		return errors.New("synthesize: empty audio content")
	}

	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return fmt.Errorf("decode audio content: %w", err)
	}
	return os.WriteFile(outPath, audio, 0o644)
}

// languageTag expands a bare language code to the BCP-47 region the API expects.
func languageTag(lang string) string {
	lang = strings.TrimSpace(lang)
	if strings.Contains(lang, "-") {
		return lang
	}
	switch strings.ToLower(lang) {
	case "", "ja":
		return "ja-JP"
	case "en":
		return "en-US"
	case "ko":
		return "ko-KR"
	case "zh":
		return "cmn-CN"
	}
	return lang
}
