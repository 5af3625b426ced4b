// Package enhance rewrites help request descriptions through an
// OpenAI-compatible chat completion endpoint. It never fails: on any error
// the original text comes back unchanged.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"doacao-platform/internal/models"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

func New(apiKey, model, endpoint string, log *zap.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.Named("enhance"),
	}
}

// Enhance returns an improved version of text, or text itself on failure.
func (c *Client) Enhance(ctx context.Context, text string, category models.Category) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out, err := c.complete(ctx, text, category)
	if err != nil {
		c.log.Warn("enhancement failed, keeping original text", zap.Error(err))
		return text
	}
	return out
}

func (c *Client) complete(ctx context.Context, text string, category models.Category) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("enhancement API key not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt(category)},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call enhancement API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("enhancement API error (status %d): %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	out := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("empty completion")
	}
	return out, nil
}

func systemPrompt(category models.Category) string {
	return "Você ajuda pessoas a escrever pedidos de doação claros e respeitosos. " +
		"Reescreva o texto do usuário em português, mantendo os fatos, em no máximo 500 caracteres. " +
		"Categoria do pedido: " + string(category) + "."
}
