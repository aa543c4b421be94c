package narration

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandEngine shells out to a TTS binary. edge-tts gets its own flags and a
// voice matching the language; any other command must accept --text and
// --output, and receives --language (a .py path runs under python3).
type CommandEngine struct {
	Command string
	Voice   string
}

func (e *CommandEngine) Name() string { return "command" }

func (e *CommandEngine) Synthesize(ctx context.Context, text, language, outPath string) error {
	name, args := e.commandLine(text, language, outPath)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (e *CommandEngine) commandLine(text, language, outPath string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(e.Command))
	if len(fields) == 0 {
		fields = []string{"edge-tts"}
	}
	bin, extra := fields[0], fields[1:]

	switch {
	case bin == "edge-tts" || strings.HasSuffix(bin, "/edge-tts"):
		args := append([]string{}, extra...)
		if voice := edgeVoice(e.Voice, language); voice != "" {
			args = append(args, "--voice", voice)
		}
		return bin, append(args, "--text", text, "--write-media", outPath)
	case strings.HasSuffix(bin, ".py"):
		args := append([]string{bin}, extra...)
		return "python3", append(languageArgs(args, language), "--text", text, "--output", outPath)
	default:
		args := append([]string{}, extra...)
		return bin, append(languageArgs(args, language), "--text", text, "--output", outPath)
	}
}

func languageArgs(args []string, language string) []string {
	if language = strings.TrimSpace(language); language != "" {
		args = append(args, "--language", language)
	}
	return args
}

// edgeVoices is the fallback voice per primary language subtag.
var edgeVoices = map[string]string{
	"ja": "ja-JP-NanamiNeural",
	"en": "en-US-GuyNeural",
	"ko": "ko-KR-SunHiNeural",
	"zh": "zh-CN-XiaoxiaoNeural",
}

// edgeVoice keeps the configured voice when its locale matches language and
// otherwise picks the fallback voice for the language, if one is known.
func edgeVoice(voice, language string) string {
	base := strings.ToLower(strings.SplitN(strings.TrimSpace(language), "-", 2)[0])
	if base == "" {
		return voice
	}
	if voice != "" && strings.HasPrefix(strings.ToLower(voice), base+"-") {
		return voice
	}
	if fallback, ok := edgeVoices[base]; ok {
		return fallback
	}
	return voice
}
