// Package openrouter implements the llm.Client interface against the
// OpenRouter chat-completions API (OpenAI-compatible wire format).
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"provenance-service/llm"
)

const defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

const (
	generateMaxTokens = 1500
	expandMaxTokens   = 800
	// Non-zero on purpose: the narratives are meant to read as evocative
	// prose, not deterministic fact retrieval.
	temperature = 0.7
)

type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type ImageContent struct {
	Type     string   `json:"type"`
	ImageURL ImageURL `json:"image_url"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client represents an OpenRouter API client. The credential is held by the
// client constructed once at process start; handlers receive it by reference.
type Client struct {
	apiKey   string
	model    string
	siteURL  string
	siteName string
	endpoint string
	client   *http.Client
}

// NewClient creates a new OpenRouter client. siteURL and siteName are sent
// as the HTTP-Referer and X-Title attribution headers.
func NewClient(apiKey, model, siteURL, siteName string, timeout time.Duration) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    model,
		siteURL:  siteURL,
		siteName: siteName,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// SourceName identifies this provider in logs
func (c *Client) SourceName() string {
	return "OpenRouter"
}

// GenerateProvenance asks the model to identify the photographed object and
// produce its provenance narrative as raw JSON text.
func (c *Client) GenerateProvenance(ctx context.Context, imageDataURI string) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "system",
				Content: generateSystemPrompt,
			},
			{
				Role: "user",
				Content: []any{
					ImageContent{
						Type: "image_url",
						ImageURL: ImageURL{
							URL:    imageDataURI,
							Detail: "high",
						},
					},
					TextContent{
						Type: "text",
						Text: "Analyze this object and provide its provenance information with component histories.",
					},
				},
			},
		},
		MaxTokens:   generateMaxTokens,
		Temperature: temperature,
	}

	return c.complete(ctx, reqBody)
}

// ExpandComponent asks the model for an extended history of one component,
// text only, no image.
func (c *Client) ExpandComponent(ctx context.Context, componentName, objectTitle string) (string, error) {
	reqBody := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "system",
				Content: expandSystemPrompt,
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Provide a detailed history of %q as a component/material used in %q.", componentName, objectTitle),
			},
		},
		MaxTokens:   expandMaxTokens,
		Temperature: temperature,
	}

	return c.complete(ctx, reqBody)
}

func (c *Client) complete(ctx context.Context, reqBody ChatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.siteURL)
	req.Header.Set("X-Title", c.siteName)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}

	return chatResp.Choices[0].Message.Content, nil
}
