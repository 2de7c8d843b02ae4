package llm

import (
	"context"
	"fmt"

	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Chain tries an ordered list of providers until one succeeds. Failover is
// explicit and stateless: there is no sticky "primary" toggle, every request
// walks the list from the front.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain creates a provider chain. At least one provider is required for
// Chat to succeed; an empty chain reports LLM_FAILED on every call.
func NewChain(providers []Provider, logger *zap.Logger) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// Name identifies the chain by its member providers.
func (c *Chain) Name() string {
	if len(c.providers) == 0 {
		return "chain(empty)"
	}
	name := "chain(" + c.providers[0].Name()
	for _, p := range c.providers[1:] {
		name += "," + p.Name()
	}
	return name + ")"
}

// Len returns the number of providers in the chain.
func (c *Chain) Len() int { return len(c.providers) }

// Chat walks the providers in order and returns the first success. The
// returned response records which provider answered. All attempt failures
// are folded into the final error when every provider fails.
func (c *Chain) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if len(c.providers) == 0 {
		return nil, core.WrapError(core.ErrLLMFailed, fmt.Errorf("no providers configured"))
	}

	var lastErr error
	for i, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, core.WrapError(core.ErrLLMTimeout, err)
		}

		resp, err := p.Chat(ctx, req)
		if err == nil {
			resp.Provider = p.Name()
			return resp, nil
		}

		lastErr = fmt.Errorf("provider %d/%d (%s): %w", i+1, len(c.providers), p.Name(), err)
		c.logger.Warn("llm provider failed, trying next",
			zap.String("provider", p.Name()),
			zap.Int("attempt", i+1),
			zap.Int("of", len(c.providers)),
			zap.Error(err),
		)
	}

	return nil, core.WrapError(core.ErrLLMFailed, lastErr)
}
