package anthropic

import "codetutor/ai/internal/llm"

// Register Anthropic provider on package import
func init() {
	llm.RegisterProvider("anthropic", func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
