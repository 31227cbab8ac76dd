package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bandfinder/internal/config"
	"bandfinder/internal/services"
)

const (
	jsonResponseType   = "json_object"
	defaultHTTPTimeout = 30 * time.Second
)

// Client wraps an OpenRouter-compatible chat completion API for genre
// classification of band request descriptions.
type Client struct {
	cfg        config.Classifier
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured endpoint (useful for tests).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.cfg.BaseURL = base
		}
	}
}

// NewClient constructs an OpenRouter API client from classifier settings.
func NewClient(cfg config.Classifier, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Verdict captures the JSON payload returned by the model.
type Verdict struct {
	Genre      string  `json:"genre"`
	Confidence float64 `json:"confidence"`
	Raw        string  `json:"-"`
}

// ClassifyGenre asks the model to label the description with one genre.
func (c *Client) ClassifyGenre(ctx context.Context, description string) (Verdict, error) {
	var empty Verdict
	description = strings.TrimSpace(description)
	if description == "" {
		return empty, services.Wrap(services.ErrValidation, "openrouter", "classify", "description required", nil)
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return empty, services.Wrap(services.ErrConfiguration, "openrouter", "classify", "api key required", nil)
	}

	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: GenreClassificationPrompt},
			{Role: "user", Content: description},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return empty, services.Wrap(services.ErrValidation, "openrouter", "classify", "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return empty, services.Wrap(services.ErrConfiguration, "openrouter", "classify", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		req.Header.Set("X-Title", c.cfg.Title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		detail := "http " + strconv.Itoa(resp.StatusCode) + ": " + strings.TrimSpace(string(body))
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", detail, nil)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "decode response", err)
	}
	if completion.Error != nil {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", strings.TrimSpace(completion.Error.Message), nil)
	}
	if len(completion.Choices) == 0 {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "empty choices", nil)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "empty content", nil)
	}

	var parsed Verdict
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "parse payload", err)
	}
	parsed.Raw = content
	parsed.Genre = strings.TrimSpace(parsed.Genre)
	if parsed.Genre == "" {
		return empty, services.Wrap(services.ErrExternal, "openrouter", "classify", "empty genre", nil)
	}
	if parsed.Confidence < 0 {
		parsed.Confidence = 0
	}
	if parsed.Confidence > 1 {
		parsed.Confidence = 1
	}
	return parsed, nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
