// Package dispatch forwards actionable recommendations to notifiers,
// filtered by confidence and a per-ticker cooldown.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/notifier"
	"go.uber.org/zap"
)

// confidenceRank orders confidence levels for threshold comparison.
var confidenceRank = map[core.Confidence]int{
	core.ConfidenceLow:    1,
	core.ConfidenceMedium: 2,
	core.ConfidenceHigh:   3,
}

// actionable labels trigger delivery. Hold and Monitor never leave the
// system.
var actionable = map[core.RecommendationLabel]bool{
	core.StrongBuy:      true,
	core.Buy:            true,
	core.SpeculativeBuy: true,
	core.Sell:           true,
	core.StrongSell:     true,
}

// Dispatcher routes recommendations to notifiers with filtering.
type Dispatcher struct {
	minConfidence int
	cooldown      time.Duration
	registry      *notifier.Registry
	logger        *zap.Logger
	cooldowns     map[string]time.Time // ticker -> last dispatch time
	mu            sync.RWMutex
}

// New creates a dispatcher. registry may be nil, which disables delivery.
func New(cfg config.DispatchConfig, registry *notifier.Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	minRank, ok := confidenceRank[core.Confidence(cfg.MinConfidence)]
	if !ok {
		minRank = confidenceRank[core.ConfidenceMedium]
	}
	cooldown := time.Duration(cfg.CooldownHours) * time.Hour
	if cooldown <= 0 {
		cooldown = 4 * time.Hour
	}
	return &Dispatcher{
		minConfidence: minRank,
		cooldown:      cooldown,
		registry:      registry,
		logger:        logger,
		cooldowns:     make(map[string]time.Time),
	}
}

// Dispatch forwards a recommendation if it passes the filters. Returns true
// when delivery was attempted.
func (d *Dispatcher) Dispatch(rec *core.Recommendation) bool {
	if rec == nil || !d.passesFilters(rec) {
		if rec != nil {
			d.logger.Debug("recommendation filtered out",
				zap.String("ticker", rec.Ticker),
				zap.String("recommendation", string(rec.Recommendation)),
				zap.String("confidence", string(rec.Confidence)),
			)
		}
		return false
	}

	d.mu.Lock()
	d.cooldowns[rec.Ticker] = time.Now()
	d.mu.Unlock()

	if d.registry == nil {
		return true
	}

	errors := d.registry.NotifyAll(*rec)
	for name, err := range errors {
		d.logger.Error("notifier failed",
			zap.String("notifier", name),
			zap.Error(err),
		)
	}

	d.logger.Info("recommendation dispatched",
		zap.String("ticker", rec.Ticker),
		zap.String("recommendation", string(rec.Recommendation)),
		zap.String("confidence", string(rec.Confidence)),
		zap.Int("notifiers", len(d.registry.GetAll())),
		zap.Int("errors", len(errors)),
	)
	return true
}

func (d *Dispatcher) passesFilters(rec *core.Recommendation) bool {
	if !actionable[rec.Recommendation] {
		return false
	}
	if confidenceRank[rec.Confidence] < d.minConfidence {
		return false
	}

	d.mu.RLock()
	last, exists := d.cooldowns[rec.Ticker]
	d.mu.RUnlock()

	return !exists || time.Since(last) >= d.cooldown
}

// ClearCooldown removes the cooldown for a specific ticker.
func (d *Dispatcher) ClearCooldown(ticker string) {
	d.mu.Lock()
	delete(d.cooldowns, ticker)
	d.mu.Unlock()
}

// CleanupExpiredCooldowns removes cooldown entries older than 2x the
// cooldown duration.
func (d *Dispatcher) CleanupExpiredCooldowns() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	expiry := d.cooldown * 2
	removed := 0
	for ticker, last := range d.cooldowns {
		if time.Since(last) > expiry {
			delete(d.cooldowns, ticker)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine periodically cleans up expired cooldowns until ctx is
// cancelled.
func (d *Dispatcher) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := d.CleanupExpiredCooldowns(); removed > 0 {
					d.logger.Debug("cleaned up expired cooldowns", zap.Int("removed", removed))
				}
			}
		}
	}()
}
