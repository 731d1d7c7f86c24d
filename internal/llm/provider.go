package llm

import (
	"context"
	"errors"
)

// Request is one completion request to an LLM provider.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	RequestID   string
}

// Metadata describes how a response was produced.
type Metadata struct {
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	ProcessingTimeMs int    `json:"processing_time_ms"`
}

// Response is the text completion returned by a provider.
type Response struct {
	Text     string
	Metadata Metadata
}

// defines the interface for LLM providers
type Provider interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	GetProviderName() string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Common error codes
// For current and future use across different providers
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)

// ErrorCode extracts the provider error code, or "" for other errors.
func ErrorCode(err error) string {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}
