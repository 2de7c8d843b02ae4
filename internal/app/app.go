// Package app wires the pipeline together and drives the watchlist loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/analyzer/aiinsights"
	"github.com/newthinker/insight/internal/analyzer/analystconsensus"
	"github.com/newthinker/insight/internal/analyzer/businessmodel"
	"github.com/newthinker/insight/internal/analyzer/comparable"
	"github.com/newthinker/insight/internal/analyzer/competitiveposition"
	"github.com/newthinker/insight/internal/analyzer/dcf"
	"github.com/newthinker/insight/internal/analyzer/financialhealth"
	"github.com/newthinker/insight/internal/analyzer/industryanalysis"
	"github.com/newthinker/insight/internal/analyzer/managementquality"
	"github.com/newthinker/insight/internal/analyzer/newssentiment"
	"github.com/newthinker/insight/internal/analyzer/revenuestream"
	"github.com/newthinker/insight/internal/analyzer/startup"
	"github.com/newthinker/insight/internal/analyzer/technical"
	"github.com/newthinker/insight/internal/classifier"
	"github.com/newthinker/insight/internal/comparison"
	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/dispatch"
	"github.com/newthinker/insight/internal/llm"
	"github.com/newthinker/insight/internal/llm/factory"
	"github.com/newthinker/insight/internal/metrics"
	"github.com/newthinker/insight/internal/notifier"
	"github.com/newthinker/insight/internal/notifier/webhook"
	"github.com/newthinker/insight/internal/orchestrator"
	"github.com/newthinker/insight/internal/provider"
	"github.com/newthinker/insight/internal/provider/edgar"
	"github.com/newthinker/insight/internal/provider/yahoo"
	"github.com/newthinker/insight/internal/quality"
	"github.com/newthinker/insight/internal/recommendation"
	analysisstore "github.com/newthinker/insight/internal/storage/analysis"
	"github.com/newthinker/insight/internal/storage/archive"
)

// App owns the assembled pipeline: orchestrator, stores, dispatcher and the
// periodic watchlist run. It is the single implementation behind both the
// HTTP surface and the scheduler.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Registry
	orch       *orchestrator.Orchestrator
	store      analysisstore.Store
	archiver   *archive.Archiver
	dispatcher *dispatch.Dispatcher

	mu        sync.RWMutex
	watchlist []string
	running   bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New builds the application from configuration. All construction failures
// surface here; after New succeeds the app only degrades, never aborts.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := metrics.NewRegistry()

	yahooClient := yahoo.New(cfg.Provider.Yahoo)
	var edgarClient *edgar.Client
	if cfg.Provider.Edgar.Enabled {
		edgarClient = edgar.New(cfg.Provider.Edgar)
	}
	prov := provider.NewComposite(yahooClient, edgarClient, logger)

	chain, err := factory.NewChain(cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("building llm chain: %w", err)
	}

	var facts financialhealth.FactsSource
	if edgarClient != nil {
		facts = edgarClient
	}
	analyzers := buildAnalyzers(prov, facts, chain, logger)

	orch := orchestrator.New(
		prov,
		analyzers,
		classifier.New(cfg.Classifier, logger),
		quality.NewCalculator(),
		recommendation.NewService(cfg.Recommendation, logger),
		comparison.NewService(prov, logger),
		reg,
		cfg.Orchestrator,
		logger,
	)

	store := analysisstore.NewMemoryStore(cfg.Storage.Hot.MaxAnalyses)

	archiver, err := archive.NewFromConfig(cfg.Storage.Cold, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("building cold storage: %w", err)
	}

	notifiers, err := buildNotifiers(cfg.Notifiers, logger)
	if err != nil {
		return nil, err
	}

	watchlist := make([]string, 0, len(cfg.Watchlist))
	for _, item := range cfg.Watchlist {
		if t := strings.ToUpper(strings.TrimSpace(item.Ticker)); t != "" {
			watchlist = append(watchlist, t)
		}
	}
	reg.SetWatchlistSize(len(watchlist))

	return &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    reg,
		orch:       orch,
		store:      store,
		archiver:   archiver,
		dispatcher: dispatch.New(cfg.Dispatch, notifiers, logger),
		watchlist:  watchlist,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}, nil
}

func buildAnalyzers(prov provider.DataProvider, facts financialhealth.FactsSource, chain llm.Provider, logger *zap.Logger) *analyzer.Registry {
	r := analyzer.NewRegistry()
	r.Register(dcf.New(logger))
	r.Register(comparable.New(logger))
	r.Register(technical.New(logger))
	r.Register(startup.New(logger))
	r.Register(analystconsensus.New(prov, logger))
	r.Register(newssentiment.New(prov, chain, logger))
	r.Register(financialhealth.New(facts, logger))
	r.Register(revenuestream.New(logger))
	r.Register(aiinsights.New(chain, logger))
	r.Register(businessmodel.New(chain, logger))
	r.Register(competitiveposition.New(chain, logger))
	r.Register(managementquality.New(chain, logger))
	r.Register(industryanalysis.New(chain, logger))
	return r
}

func buildNotifiers(configs map[string]config.NotifierConfig, logger *zap.Logger) (*notifier.Registry, error) {
	r := notifier.NewRegistry()
	for name, nc := range configs {
		if !nc.Enabled {
			continue
		}
		w, err := webhook.New(name, nc.URL, nc.Headers)
		if err != nil {
			return nil, fmt.Errorf("building notifier %s: %w", name, err)
		}
		if err := r.Register(w); err != nil {
			return nil, err
		}
		logger.Info("notifier registered", zap.String("name", name))
	}
	return r, nil
}

// Metrics exposes the Prometheus registry for the HTTP layer.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Store exposes the hot analysis store for the HTTP layer.
func (a *App) Store() analysisstore.Store { return a.store }

// Analyze runs the full pipeline for one ticker and persists the result.
// Storage and delivery failures are logged, never returned: once the
// orchestrator produced a payload the caller gets it.
func (a *App) Analyze(ctx context.Context, ticker string) (*core.AnalysisPayload, error) {
	payload, err := a.orch.AnalyzeStock(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if err := a.store.Save(ctx, payload); err != nil {
		a.logger.Error("failed to store analysis",
			zap.String("ticker", payload.Ticker),
			zap.Error(err),
		)
	}

	if a.archiver != nil {
		if path, err := a.archiver.Archive(ctx, payload); err != nil {
			a.logger.Error("failed to archive analysis",
				zap.String("ticker", payload.Ticker),
				zap.Error(err),
			)
		} else {
			a.logger.Debug("analysis archived",
				zap.String("ticker", payload.Ticker),
				zap.String("path", path),
			)
		}
	}

	a.dispatcher.Dispatch(payload.Recommendation)

	return payload, nil
}

// Watchlist returns the configured tickers.
func (a *App) Watchlist() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]string, len(a.watchlist))
	copy(out, a.watchlist)
	return out
}

// RunOnce analyzes every watchlist ticker sequentially. Concurrency lives
// inside a single analysis; running tickers one at a time keeps the load on
// rate-limited upstream APIs predictable. Per-ticker failures are logged and
// the run continues.
func (a *App) RunOnce(ctx context.Context) error {
	tickers := a.Watchlist()
	if len(tickers) == 0 {
		a.logger.Debug("watchlist empty, nothing to run")
		return nil
	}

	start := time.Now()
	failed := 0
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := a.Analyze(ctx, ticker); err != nil {
			failed++
			a.logger.Error("watchlist analysis failed",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
		}
	}

	a.logger.Info("watchlist run complete",
		zap.Int("tickers", len(tickers)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)),
	)
	if failed == len(tickers) {
		return errors.New("every watchlist analysis failed")
	}
	return nil
}

// Start runs the periodic watchlist loop until ctx is cancelled or Stop is
// called. The first run happens immediately.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.mu.Unlock()

	interval := a.cfg.Schedule.Interval
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	a.dispatcher.StartCleanupRoutine(ctx, time.Hour)

	go func() {
		defer close(a.doneCh)

		a.logger.Info("watchlist schedule started",
			zap.Duration("interval", interval),
			zap.Int("tickers", len(a.Watchlist())),
		)
		if err := a.RunOnce(ctx); err != nil {
			a.logger.Error("watchlist run failed", zap.Error(err))
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-a.stopCh:
				return
			case <-ticker.C:
				if err := a.RunOnce(ctx); err != nil {
					a.logger.Error("watchlist run failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the schedule loop and waits for it to exit. Safe to call
// without a prior Start.
func (a *App) Stop() {
	a.stopOnce.Do(func() { close(a.stopCh) })

	a.mu.RLock()
	running := a.running
	a.mu.RUnlock()
	if running {
		<-a.doneCh
	}
}
