package factory

import (
	"testing"

	"github.com/newthinker/insight/internal/config"
)

func TestNewChain(t *testing.T) {
	cfg := config.LLMConfig{
		Providers: []string{"claude", "ollama"},
		Claude:    config.ClaudeConfig{APIKey: "sk-test"},
		Ollama:    config.OllamaConfig{Endpoint: "http://localhost:11434"},
	}

	chain, err := NewChain(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain.Len() != 2 {
		t.Errorf("expected 2 providers, got %d", chain.Len())
	}
	if chain.Name() != "chain(claude,ollama)" {
		t.Errorf("unexpected chain order: %s", chain.Name())
	}
}

func TestNewChain_UnknownProvider(t *testing.T) {
	_, err := NewChain(config.LLMConfig{Providers: []string{"groq"}}, nil)
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewChain_MissingKey(t *testing.T) {
	_, err := NewChain(config.LLMConfig{Providers: []string{"openai"}}, nil)
	if err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestNewChain_Empty(t *testing.T) {
	chain, err := NewChain(config.LLMConfig{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chain.Len() != 0 {
		t.Errorf("expected empty chain, got %d providers", chain.Len())
	}
}
