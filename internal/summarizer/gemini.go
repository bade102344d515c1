package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/MrMazzone/meeting-notes/internal/logger"
)

// geminiBackend is the alternate provider. It rotates through the
// supplied API keys when one is rate limited.
type geminiBackend struct {
	apiKeys    []string
	currentKey int
	model      string
	logger     logger.Logger
}

func newGeminiBackend(apiKeys []string, model string, log logger.Logger) *geminiBackend {
	return &geminiBackend{
		apiKeys: apiKeys,
		model:   model,
		logger:  log,
	}
}

func (g *geminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		key := g.apiKeys[g.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", g.currentKey+1)
				g.rotateKey()
				lastErr = err
				continue
			}
			if strings.Contains(errMsg, "token count") || strings.Contains(errMsg, "exceeds the maximum") {
				return "", fmt.Errorf("%s: %w", g.model, ErrContextTooLarge)
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return text, nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiBackend) rotateKey() {
	g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
}
