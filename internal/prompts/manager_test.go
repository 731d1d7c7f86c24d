package prompts

import (
	"strings"
	"testing"
)

func TestNewPromptManagerLoadsAllModes(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	templates := pm.GetTemplates()
	for _, mode := range []string{"grade", "chat", "coach", "lecture", "questions"} {
		if _, ok := templates[mode]; !ok {
			t.Fatalf("expected mode %s to be loaded", mode)
		}
		if _, ok := templates[mode]["default"]; !ok {
			t.Fatalf("expected default variant for mode %s", mode)
		}
	}
}

func TestBuildPromptSubstitutes(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt, err := pm.BuildPrompt("grade", "default", map[string]string{
		"LessonTitle":       "Print Statements",
		"LessonDifficulty":  "Beginner",
		"LessonCategory":    "Basics",
		"Code":              "print('hi')",
		"TranscriptSection": "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(prompt, "Print Statements") || !strings.Contains(prompt, "print('hi')") {
		t.Fatalf("expected substituted values in prompt, got %q", prompt)
	}
	if strings.Contains(prompt, "{{.") {
		t.Fatalf("expected no unresolved placeholders, got %q", prompt)
	}
}

func TestBuildSystemSubstitutes(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	system, err := pm.BuildSystem("chat", map[string]string{
		"LessonTitle":       "Variables and User Input",
		"LessonDescription": "Working with input()",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(system, "Variables and User Input") {
		t.Fatalf("expected lesson title in system prompt, got %q", system)
	}
}

func TestBuildPromptUnknownModeAndVariant(t *testing.T) {
	pm, err := NewPromptManager()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := pm.BuildPrompt("nonexistent", "default", nil); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if _, err := pm.BuildPrompt("grade", "verbose", nil); err == nil {
		t.Fatal("expected error for unknown variant")
	}
	if _, err := pm.BuildSystem("nonexistent", nil); err == nil {
		t.Fatal("expected error for unknown system mode")
	}
}
