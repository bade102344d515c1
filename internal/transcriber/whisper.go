package transcriber

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/pkg/executor"
)

// TranscribeFile runs the transcription engine once against a finished
// recording, outside any capture session. Used by the drop-folder
// import path. Unlike per-segment jobs, a failure here is an error the
// caller sees.
func TranscribeFile(ctx context.Context, cfg *config.Config, exec executor.Executor, path string) (string, error) {
	out, err := exec.Execute(ctx, cfg.Whisper.PythonBinary,
		cfg.Whisper.ScriptPath, path, cfg.Whisper.ModelSize, cfg.Whisper.Language)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", path, err)
	}
	return strings.TrimSpace(out), nil
}
