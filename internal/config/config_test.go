package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Fatalf("expected anthropic default, got %q", cfg.Provider)
	}
}

func TestLoadConfigRejectsUnknownProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "skynet")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestHasCredential(t *testing.T) {
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasCredential() {
		t.Fatal("expected no credential without the env var")
	}

	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	if !cfg.HasCredential() {
		t.Fatal("expected credential to be detected")
	}
}

func TestHasCredentialGemini(t *testing.T) {
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.HasCredential() {
		t.Fatal("expected gemini credential to be detected")
	}
}
