package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codetutor/ai/internal/llm"
)

// Client calls the Anthropic Messages API over HTTP.
type Client struct {
	httpClient *http.Client
	config     *Config
}

func NewClient(config *Config) (*Client, error) {
	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
}

// Complete sends one completion request and returns the concatenated text
// blocks of the response.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1000
	}

	body := messagesRequest{
		Model:     c.config.Model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to encode request",
			Err:      err,
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to build request",
			Err:      err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		code := llm.ErrCodeServiceDown
		if ctx.Err() != nil {
			code = llm.ErrCodeTimeout
		}
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     code,
			Message:  "Request to Anthropic API failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     statusToCode(resp.StatusCode),
			Message:  fmt.Sprintf("Anthropic HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
		}
	}

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to decode Anthropic response",
			Err:      err,
		}
	}

	var text strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "" || block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, &llm.ProviderError{
			Provider: "anthropic",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	model := parsed.Model
	if model == "" {
		model = c.config.Model
	}

	return &llm.Response{
		Text: text.String(),
		Metadata: llm.Metadata{
			Provider:         "anthropic",
			Model:            model,
			ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
		},
	}, nil
}

func statusToCode(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return llm.ErrCodeAPIKey
	case status == http.StatusTooManyRequests:
		return llm.ErrCodeRateLimit
	case status >= 500:
		return llm.ErrCodeServiceDown
	default:
		return llm.ErrCodeInvalidInput
	}
}

func (c *Client) GetProviderName() string {
	return "anthropic"
}
