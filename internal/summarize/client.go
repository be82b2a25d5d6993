// Package summarize selects which fetched articles still need a
// summary and enriches them through an external provider.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client produces a one-sentence summary for an article, or an error.
type Client interface {
	Summarize(ctx context.Context, title, excerpt string) (string, error)
}

// DefaultModel is the OpenAI model used for summaries.
const DefaultModel = "gpt-4o-mini"

const systemPrompt = "You are a travel news editor. Given an article title and excerpt, " +
	"write exactly one concise sentence summarizing the key takeaway. " +
	"No preamble, no quotes — just the sentence."

// OpenAIClient calls the OpenAI chat completions API over plain HTTP.
type OpenAIClient struct {
	// BaseURL can be pointed at a test server.
	BaseURL string

	apiKey     string
	model      string
	httpClient *http.Client
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client. An empty model falls back to
// DefaultModel.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClient{
		BaseURL:    "https://api.openai.com/v1",
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize requests one sentence for a title and excerpt. The first
// choice's content is returned trimmed; an empty response is an error.
func (c *OpenAIClient) Summarize(ctx context.Context, title, excerpt string) (string, error) {
	reqBody := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\nExcerpt: %s", title, excerpt)},
		},
		"max_tokens":  100,
		"temperature": 0.3,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai chat error: %s", resp.Status)
	}

	var r chatResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("parse openai response: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	content := strings.TrimSpace(r.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response is empty")
	}
	return content, nil
}
