package summarizer

import (
	"fmt"
	"os"
	"strings"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
)

type implSummarizer struct {
	backend Backend
	logger  logger.Logger
}

// New creates a Summarizer using the configured provider. The API key
// comes from the configured environment variable; its absence is a
// distinct, user-actionable error.
func New(cfg *config.Config, log logger.Logger) (Summarizer, error) {
	key := os.Getenv(cfg.Summarizer.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: set %s", ErrMissingAPIKey, cfg.Summarizer.APIKeyEnv)
	}

	var backend Backend
	switch cfg.Summarizer.Provider {
	case "gemini":
		// Comma-separated keys rotate on rate limits.
		backend = newGeminiBackend(strings.Split(key, ","), cfg.Summarizer.GeminiModel, log)
	default:
		backend = newAnthropicBackend(cfg.Summarizer, key, log)
	}

	return &implSummarizer{backend: backend, logger: log}, nil
}

// newWithBackend wires an explicit backend; tests use this.
func newWithBackend(backend Backend, log logger.Logger) Summarizer {
	return &implSummarizer{backend: backend, logger: log}
}
