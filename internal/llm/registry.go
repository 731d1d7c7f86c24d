package llm

import "fmt"

// ProviderFactory builds a fully configured provider, reading whatever
// environment its implementation needs.
type ProviderFactory func() (Provider, error)

// Provider packages register themselves here from init(), so a blank
// import of the package is all it takes to make a provider selectable
// by name.
var providers = make(map[string]ProviderFactory)

func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewProvider instantiates the named provider. The factory runs on every
// call, so configuration problems like a missing credential surface here
// rather than at registration time.
func NewProvider(name string) (Provider, error) {
	factory, exists := providers[name]
	if !exists {
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
	return factory()
}
