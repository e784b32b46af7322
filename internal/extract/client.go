package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/schedwise/schedwise/internal/schedule"
)

// Default models used when the configuration leaves them empty.
const (
	DefaultChatModel  = "gpt-4o-mini"
	DefaultEmbedModel = "text-embedding-3-small"
)

// Config configures the language-model client. BaseURL points at any
// OpenAI-compatible API, e.g. "https://api.openai.com/v1".
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
	HTTPClient *http.Client
}

// Client talks to an OpenAI-compatible chat-completions and embeddings API
// and translates between chat fragments and structured scheduling data.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a client. BaseURL and APIKey are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("extract: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extract: API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient}, nil
}

var _ schedule.Extractor = (*Client)(nil)

// chat API wire types

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ExtractSchedule pulls structured scheduling data out of one chat
// fragment.
func (c *Client) ExtractSchedule(ctx context.Context, req schedule.ExtractionRequest) (*schedule.Extraction, error) {
	content, err := c.complete(ctx, extractionSystemPrompt, extractionUserPrompt(req), true)
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}
	return parseExtraction([]byte(content))
}

// ComposeInvite synthesizes the invite email subject and body.
func (c *Client) ComposeInvite(ctx context.Context, req schedule.InviteRequest) (*schedule.InviteDraft, error) {
	content, err := c.complete(ctx, inviteSystemPrompt, inviteUserPrompt(req), true)
	if err != nil {
		return nil, fmt.Errorf("invite composition call: %w", err)
	}

	var draft schedule.InviteDraft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("parsing invite draft: %w", err)
	}
	if draft.Subject == "" || draft.Body == "" {
		return nil, fmt.Errorf("invite draft incomplete: subject or body empty")
	}
	return &draft, nil
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingsRequest{
		Model: c.cfg.EmbedModel,
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}

	var resp embeddingsResponse
	if err := c.post(ctx, "/embeddings", body, &resp); err != nil {
		return nil, fmt.Errorf("embeddings call: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("embeddings call: %w", resp.Error)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embeddings call: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// complete runs one chat completion and returns the assistant content.
func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := chatRequest{
		Model: c.cfg.ChatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat/completions", body, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return json.Unmarshal(data, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
