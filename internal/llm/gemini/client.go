package gemini

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"

	"codetutor/ai/internal/llm"
)

// Client wraps the Gemini SDK behind the provider interface.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}

	return &Client{
		client: client,
		config: config,
	}, nil
}

// Complete sends one completion request. Gemini has no separate system slot
// in this call shape, so the system prompt is prepended to the user prompt.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	startTime := time.Now()

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + prompt
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.config.Model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeServiceDown,
			Message:  "Failed to generate content",
			Err:      err,
		}
	}

	if result == nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "No response generated",
		}
	}

	text, err := result.Text()
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Failed to extract response text",
			Err:      err,
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &llm.ProviderError{
			Provider: "gemini",
			Code:     llm.ErrCodeInvalidInput,
			Message:  "Empty response generated",
		}
	}

	return &llm.Response{
		Text: text,
		Metadata: llm.Metadata{
			Provider:         "gemini",
			Model:            c.config.Model,
			ProcessingTimeMs: int(time.Since(startTime).Milliseconds()),
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return "gemini"
}
