package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	dErrors "scribed/internal/domainerrors"
	"scribed/internal/platform/config"
)

const chatCompletionsPath = "/v1/chat/completions"

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenAIClient builds a client from configuration. A zero
// RequestsPerSecond disables client-side throttling.
func NewOpenAIClient(cfg config.TextGenConfig) *OpenAIClient {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &OpenAIClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    limiter,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat-completion request and returns the first choice.
func (c *OpenAIClient) Generate(ctx context.Context, systemInstruction, userContent string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "text generation throttled")
		}
	}

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: userContent},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "text generation request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", dErrors.Newf(dErrors.CodeCollaborator, "text generation returned %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeCollaborator, "decode chat response")
	}
	if len(parsed.Choices) == 0 {
		return "", dErrors.New(dErrors.CodeCollaborator, "no choices in chat response")
	}
	return parsed.Choices[0].Message.Content, nil
}
