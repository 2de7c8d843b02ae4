// Package factory builds the LLM provider chain from configuration.
package factory

import (
	"fmt"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/llm"
	"github.com/newthinker/insight/internal/llm/claude"
	"github.com/newthinker/insight/internal/llm/ollama"
	"github.com/newthinker/insight/internal/llm/openai"
	"go.uber.org/zap"
)

// NewChain creates the ordered fallback chain from configuration. The
// providers list controls both membership and failover order.
func NewChain(cfg config.LLMConfig, logger *zap.Logger) (*llm.Chain, error) {
	providers := make([]llm.Provider, 0, len(cfg.Providers))

	for _, name := range cfg.Providers {
		p, err := newProvider(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("building llm provider %s: %w", name, err)
		}
		providers = append(providers, p)
	}

	return llm.NewChain(providers, logger), nil
}

func newProvider(name string, cfg config.LLMConfig) (llm.Provider, error) {
	switch name {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", name)
	}
}
