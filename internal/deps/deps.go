// Package deps resolves which external tools and credentials are available.
// Resolution happens once at startup and the result is passed to each stage.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"race-video-pipeline/internal/config"
)

// Status reports the availability of a dependency.
type Status struct {
	Name      string
	Command   string
	Available bool
	Detail    string
}

// Capabilities is the startup snapshot of optional and required dependencies.
type Capabilities struct {
	FFmpeg        Status
	FFprobe       Status
	Speech        Status
	SpeechEngine  string // resolved engine: cloud | command | ""
	TitleFont     Status
	DateFont      Status
	ClientSecrets Status
}

// Resolve probes PATH and the configured files and keys.
func Resolve(cfg *config.Config) Capabilities {
	caps := Capabilities{
		FFmpeg:        CheckBinary("FFmpeg", cfg.Video.FFmpeg),
		FFprobe:       CheckBinary("FFprobe", cfg.Video.FFprobe),
		TitleFont:     CheckFile("Title font", cfg.Thumbnail.TitleFont),
		DateFont:      CheckFile("Date font", cfg.Thumbnail.DateFont),
		ClientSecrets: CheckFile("OAuth client secrets", cfg.Paths.ClientSecrets),
	}
	caps.SpeechEngine, caps.Speech = resolveSpeech(cfg.Narration)
	return caps
}

// List returns the statuses in display order.
func (c Capabilities) List() []Status {
	return []Status{c.FFmpeg, c.FFprobe, c.Speech, c.TitleFont, c.DateFont, c.ClientSecrets}
}

// CheckBinary reports whether cmd resolves on PATH (or as a path).
func CheckBinary(name, cmd string) Status {
	cmd = strings.TrimSpace(cmd)
	status := Status{Name: name, Command: cmd}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	status.Available = true
	return status
}

// CheckFile reports whether path names a readable regular file.
func CheckFile(name, path string) Status {
	status := Status{Name: name, Command: path}
	if strings.TrimSpace(path) == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(path)
	if err != nil {
		status.Detail = fmt.Sprintf("%s not found", path)
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%s is a directory", path)
		return status
	}
	status.Available = true
	return status
}

func resolveSpeech(n config.NarrationConfig) (string, Status) {
	cloud := Status{Name: "Cloud Text-to-Speech", Command: "texttospeech.googleapis.com"}
	if strings.TrimSpace(n.APIKey) != "" {
		cloud.Available = true
	} else {
		cloud.Detail = "GOOGLE_TTS_API_KEY not set"
	}

	command := strings.TrimSpace(n.Command)
	if command == "" {
		command = "edge-tts"
	}
	cmd := CheckBinary("Speech command", firstField(command))
	cmd.Command = command

	switch n.Engine {
	case config.EngineCloud:
		return config.EngineCloud, cloud
	case config.EngineCommand:
		return config.EngineCommand, cmd
	}
	if cloud.Available {
		return config.EngineCloud, cloud
	}
	if cmd.Available {
		return config.EngineCommand, cmd
	}
	return "", Status{
		Name:   "Speech synthesis",
		Detail: fmt.Sprintf("no engine available: %s; %s", cloud.Detail, cmd.Detail),
	}
}

func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	if strings.HasSuffix(fields[0], ".py") {
		return "python3"
	}
	return fields[0]
}
