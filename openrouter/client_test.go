package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"provenance-service/llm"
)

func newTestClient(endpoint string) *Client {
	c := NewClient("test-key", "openai/gpt-4o", "http://localhost:3000", "Provenance", 5*time.Second)
	c.endpoint = endpoint
	return c
}

func completionResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestGenerateProvenanceRequestShape(t *testing.T) {
	var captured struct {
		Model       string            `json:"model"`
		Messages    []json.RawMessage `json:"messages"`
		MaxTokens   int               `json:"max_tokens"`
		Temperature float64           `json:"temperature"`
	}
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("Failed to parse request body: %v", err)
		}
		io.WriteString(w, completionResponse(`{"title":"Axe"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	content, err := client.GenerateProvenance(context.Background(), "data:image/jpeg;base64,AAAA")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if content != `{"title":"Axe"}` {
		t.Errorf("Unexpected content: %s", content)
	}

	if captured.Model != "openai/gpt-4o" {
		t.Errorf("Expected model openai/gpt-4o, got %s", captured.Model)
	}
	if captured.MaxTokens != 1500 {
		t.Errorf("Expected max_tokens 1500, got %d", captured.MaxTokens)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %f", captured.Temperature)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(captured.Messages))
	}

	// The user turn carries the image reference and the instruction text
	userTurn := string(captured.Messages[1])
	if !strings.Contains(userTurn, "data:image/jpeg;base64,AAAA") {
		t.Errorf("User message missing image data URI: %s", userTurn)
	}
	if !strings.Contains(userTurn, `"detail":"high"`) {
		t.Errorf("User message missing detail hint: %s", userTurn)
	}
	if !strings.Contains(userTurn, "Analyze this object") {
		t.Errorf("User message missing instruction text: %s", userTurn)
	}

	if got := headers.Get("Authorization"); got != "Bearer test-key" {
		t.Errorf("Unexpected Authorization header: %s", got)
	}
	if got := headers.Get("HTTP-Referer"); got != "http://localhost:3000" {
		t.Errorf("Unexpected HTTP-Referer header: %s", got)
	}
	if got := headers.Get("X-Title"); got != "Provenance" {
		t.Errorf("Unexpected X-Title header: %s", got)
	}
}

func TestExpandComponentRequestShape(t *testing.T) {
	var captured ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("Failed to parse request body: %v", err)
		}
		io.WriteString(w, completionResponse(`{"name":"Bronze"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.ExpandComponent(context.Background(), "Bronze", "Bronze Axe"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if captured.MaxTokens != 800 {
		t.Errorf("Expected max_tokens 800, got %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %d", len(captured.Messages))
	}

	// Expansion sends a plain-text user turn naming component and object
	userText, ok := captured.Messages[1].Content.(string)
	if !ok {
		t.Fatalf("Expected plain-text user content, got %T", captured.Messages[1].Content)
	}
	if !strings.Contains(userText, "Bronze") || !strings.Contains(userText, "Bronze Axe") {
		t.Errorf("User text missing component or object title: %s", userText)
	}
}

func TestEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GenerateProvenance(context.Background(), "data:image/jpeg;base64,AAAA")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, completionResponse(""))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.ExpandComponent(context.Background(), "Bronze", "Bronze Axe")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GenerateProvenance(context.Background(), "data:image/jpeg;base64,AAAA")
	if err == nil {
		t.Fatal("Expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server watches the connection and cancels
		// r.Context() when the client disconnects.
		io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.GenerateProvenance(ctx, "data:image/jpeg;base64,AAAA")
	if err == nil {
		t.Fatal("Expected error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
