package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WhisperCLI runs speech recognition through the whisper command line tool.
type WhisperCLI struct {
	cmd   string
	model string
}

var _ Transcriber = (*WhisperCLI)(nil)

func NewWhisperCLI(model string) *WhisperCLI {
	if model == "" {
		model = "base"
	}
	return &WhisperCLI{cmd: "whisper", model: model}
}

// Transcribe writes the recognized text next to the audio file and returns
// it. The caller bounds execution time through ctx.
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir := filepath.Dir(audioPath)
	cmd := exec.CommandContext(ctx, w.cmd,
		audioPath,
		"--model", w.model,
		"--output_format", "txt",
		"--output_dir", outDir,
	)
	if _, err := cmd.Output(); err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("whisper failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("run whisper: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	content, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}
	return string(content), nil
}
