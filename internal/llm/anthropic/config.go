package anthropic

import (
	"errors"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-3-5-haiku-20241022"
	apiVersion     = "2023-06-01"
)

// holds Anthropic-specific configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewConfig() (*Config, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable is required")
	}

	model := os.Getenv("ANTHROPIC_MODEL")
	if model == "" {
		model = defaultModel
	}

	baseURL := os.Getenv("ANTHROPIC_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}, nil
}
