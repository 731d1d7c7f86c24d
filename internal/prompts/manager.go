package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is what handlers depend on; satisfied by PromptManager and
// by test doubles.
type PromptProvider interface {
	BuildPrompt(mode, variant string, data map[string]string) (string, error)
	BuildSystem(mode string, data map[string]string) (string, error)
	GetTemplates() map[string]map[string]string
}

type PromptManager struct {
	systems map[string]string            // mode -> system prompt
	prompts map[string]map[string]string // mode -> variant -> complete user prompt
}

// loaded prompt template
type PromptTemplate struct {
	System     string            `yaml:"system"`
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		systems: make(map[string]string),
		prompts: make(map[string]map[string]string),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds the user prompt for the given mode, variant and context
func (pm *PromptManager) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	modePrompts, exists := pm.prompts[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	promptTemplate, exists := modePrompts[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	return substitute(promptTemplate, data), nil
}

// builds the system prompt for the given mode
func (pm *PromptManager) BuildSystem(mode string, data map[string]string) (string, error) {
	system, exists := pm.systems[mode]
	if !exists {
		return "", fmt.Errorf("system prompt not found for mode: %s", mode)
	}
	return substitute(system, data), nil
}

// GetTemplates exposes the loaded prompts for readiness checks and tests.
func (pm *PromptManager) GetTemplates() map[string]map[string]string {
	return pm.prompts
}

// Simple string replacement instead of complex template execution
func substitute(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var promptTemplate PromptTemplate
		if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		pm.systems[name] = strings.TrimSpace(promptTemplate.System)
		pm.prompts[name] = make(map[string]string)

		for variant, variantPrompt := range promptTemplate.Variants {
			var fullPrompt strings.Builder
			if promptTemplate.BasePrompt != "" {
				fullPrompt.WriteString(strings.TrimSpace(promptTemplate.BasePrompt))
				fullPrompt.WriteString("\n\n")
			}
			fullPrompt.WriteString(strings.TrimSpace(variantPrompt))

			pm.prompts[name][variant] = fullPrompt.String()
		}
	}

	return nil
}
