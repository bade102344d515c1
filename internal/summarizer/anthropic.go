package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrMazzone/meeting-notes/internal/config"
	"github.com/MrMazzone/meeting-notes/internal/logger"
)

const anthropicVersion = "2023-06-01"

// anthropicBackend talks to the messages HTTP endpoint, trying models
// in preference order and advancing past any the endpoint does not
// serve.
type anthropicBackend struct {
	endpoint string
	apiKey   string
	models   []string
	client   *http.Client
	logger   logger.Logger
}

func newAnthropicBackend(cfg config.SummarizerConfig, apiKey string, log logger.Logger) *anthropicBackend {
	return &anthropicBackend{
		endpoint: cfg.Endpoint,
		apiKey:   apiKey,
		models:   cfg.Models,
		client:   &http.Client{Timeout: 5 * time.Minute},
		logger:   log,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (b *anthropicBackend) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, model := range b.models {
		text, err := b.call(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, errModelNotFound) {
			b.logger.Warn(ctx, "Model %q not available, trying next", model)
			lastErr = err
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("no summarization model available: %w", lastErr)
}

func (b *anthropicBackend) call(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     model,
		MaxTokens: b.maxTokens(model),
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", b.apiKey)
	req.Header.Set("Anthropic-Version", anthropicVersion)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var decoded messagesResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		var sb strings.Builder
		for _, block := range decoded.Content {
			if block.Type == "" || block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String(), nil

	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%s: %w", model, errModelNotFound)

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusRequestEntityTooLarge:
		if isContextLengthBody(raw) {
			return "", fmt.Errorf("%s: %w", model, ErrContextTooLarge)
		}
		return "", fmt.Errorf("%s: status %d: %s", model, resp.StatusCode, errorSnippet(raw))

	default:
		return "", fmt.Errorf("%s: status %d: %s", model, resp.StatusCode, errorSnippet(raw))
	}
}

// maxTokens follows the backend's output limits: the largest model in
// the preference order allows 8192 output tokens, the rest 4096.
func (b *anthropicBackend) maxTokens(model string) int {
	if len(b.models) > 0 && model == b.models[0] {
		return 8192
	}
	return 4096
}

// isContextLengthBody reports whether an error body indicates the
// prompt blew the model's context window.
func isContextLengthBody(raw []byte) bool {
	body := strings.ToLower(string(raw))
	for _, marker := range []string{"context window", "context length", "prompt is too long", "too many tokens", "token limit"} {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

func errorSnippet(raw []byte) string {
	var decoded messagesResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
