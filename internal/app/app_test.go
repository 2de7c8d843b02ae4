package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/classifier"
	"github.com/newthinker/insight/internal/comparison"
	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/dispatch"
	"github.com/newthinker/insight/internal/metrics"
	"github.com/newthinker/insight/internal/notifier"
	"github.com/newthinker/insight/internal/orchestrator"
	"github.com/newthinker/insight/internal/quality"
	"github.com/newthinker/insight/internal/recommendation"
	analysisstore "github.com/newthinker/insight/internal/storage/analysis"
	"github.com/newthinker/insight/internal/storage/archive"
)

type fakeProvider struct {
	failTickers map[string]bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FinancialMetrics(_ context.Context, ticker string) (*core.FinancialMetrics, error) {
	if f.failTickers[ticker] {
		return nil, errors.New("upstream down")
	}
	return &core.FinancialMetrics{
		Ticker:              ticker,
		Sector:              "Technology",
		MarketCap:           500e9,
		CurrentPrice:        130,
		NetIncome:           20e9,
		FreeCashFlow:        25e9,
		TotalRevenue:        100e9,
		YearlyRevenueGrowth: 0.05,
	}, nil
}

func (f *fakeProvider) PriceData(context.Context, string) (*core.PriceData, error) {
	return nil, errors.New("no price history")
}

func (f *fakeProvider) AnalystData(context.Context, string) (*core.AnalystData, error) {
	return nil, errors.New("no analyst data")
}

func (f *fakeProvider) News(context.Context, string, int) ([]core.NewsItem, error) {
	return nil, errors.New("no news")
}

type stubAnalyzer struct{}

func (stubAnalyzer) Type() core.AnalysisType { return core.AnalysisTechnical }

func (stubAnalyzer) Applicable(core.CompanyType) bool { return true }

func (stubAnalyzer) Analyze(_ context.Context, _ string, actx *analyzer.Context) core.AnalyzerResult {
	price := 150.0
	return core.AnalyzerResult{
		Type:           core.AnalysisTechnical,
		Applicable:     true,
		Recommendation: core.Buy,
		PredictedPrice: &price,
		Confidence:     core.ConfidenceHigh,
	}
}

// newTestApp wires an App around a fake provider and a single stub analyzer
// so the pipeline runs without touching the network.
func newTestApp(t *testing.T, p *fakeProvider) *App {
	t.Helper()

	cfg := config.Defaults()
	cfg.Storage.Cold.Path = t.TempDir()
	logger := zap.NewNop()

	reg := metrics.NewRegistry()
	analyzers := analyzer.NewRegistry()
	analyzers.Register(stubAnalyzer{})

	orch := orchestrator.New(
		p,
		analyzers,
		classifier.New(cfg.Classifier, logger),
		quality.NewCalculator(),
		recommendation.NewService(cfg.Recommendation, logger),
		comparison.NewService(p, logger),
		reg,
		cfg.Orchestrator,
		logger,
	)

	archiver, err := archive.NewFromConfig(cfg.Storage.Cold, reg, logger)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		metrics:    reg,
		orch:       orch,
		store:      analysisstore.NewMemoryStore(cfg.Storage.Hot.MaxAnalyses),
		archiver:   archiver,
		dispatcher: dispatch.New(cfg.Dispatch, notifier.NewRegistry(), logger),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

func TestNewBuildsApp(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Cold.Path = t.TempDir()
	cfg.Watchlist = []config.WatchlistItem{
		{Ticker: " acme ", Name: "Acme Corp"},
		{Ticker: "MSFT"},
		{Ticker: ""},
	}

	a, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := a.Watchlist()
	if len(got) != 2 || got[0] != "ACME" || got[1] != "MSFT" {
		t.Errorf("expected normalized watchlist [ACME MSFT], got %v", got)
	}
	if a.Metrics() == nil || a.Store() == nil {
		t.Error("expected metrics and store to be wired")
	}
}

func TestNewRejectsUnknownLLMProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.LLM.Providers = []string{"palm"}

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown llm provider")
	}
}

func TestNewRejectsUnknownColdStorage(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Cold.Type = "gcs"

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown cold storage type")
	}
}

func TestBuildNotifiers(t *testing.T) {
	reg, err := buildNotifiers(map[string]config.NotifierConfig{
		"ops":      {Enabled: true, URL: "http://hooks.local/ops"},
		"disabled": {Enabled: false, URL: "http://hooks.local/ignored"},
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("buildNotifiers: %v", err)
	}

	if _, err := reg.Get("ops"); err != nil {
		t.Error("expected enabled notifier to be registered")
	}
	if _, err := reg.Get("disabled"); err == nil {
		t.Error("disabled notifier must not be registered")
	}
}

func TestBuildNotifiersRequiresURL(t *testing.T) {
	_, err := buildNotifiers(map[string]config.NotifierConfig{
		"broken": {Enabled: true},
	}, zap.NewNop())
	if err == nil {
		t.Error("expected error for enabled notifier without url")
	}
}

func TestAnalyzeStoresAndArchives(t *testing.T) {
	a := newTestApp(t, &fakeProvider{})

	payload, err := a.Analyze(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if payload.Ticker != "ACME" {
		t.Errorf("expected ticker ACME, got %s", payload.Ticker)
	}

	stored, err := a.store.Latest(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("expected payload in hot store: %v", err)
	}
	if stored.ID != payload.ID {
		t.Errorf("stored id %s does not match payload id %s", stored.ID, payload.ID)
	}

	archived, err := a.archiver.History(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(archived) != 1 {
		t.Errorf("expected 1 archived payload, got %d", len(archived))
	}
}

func TestAnalyzePropagatesOrchestratorError(t *testing.T) {
	a := newTestApp(t, &fakeProvider{failTickers: map[string]bool{"ACME": true}})

	_, err := a.Analyze(context.Background(), "ACME")
	if !errors.Is(err, core.ErrMetricsUnavailable) {
		t.Fatalf("expected ErrMetricsUnavailable, got %v", err)
	}

	if n, _ := a.store.Count(context.Background(), analysisstore.ListFilter{}); n != 0 {
		t.Errorf("failed analysis must not be stored, found %d", n)
	}
}

func TestRunOnceEmptyWatchlist(t *testing.T) {
	a := newTestApp(t, &fakeProvider{})
	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce on empty watchlist: %v", err)
	}
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	a := newTestApp(t, &fakeProvider{failTickers: map[string]bool{"BADCO": true}})
	a.watchlist = []string{"BADCO", "ACME"}

	if err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if _, err := a.store.Latest(context.Background(), "ACME"); err != nil {
		t.Error("expected the healthy ticker to be analyzed despite the failure")
	}
	if _, err := a.store.Latest(context.Background(), "BADCO"); err == nil {
		t.Error("failed ticker must not be stored")
	}
}

func TestRunOnceAllFailed(t *testing.T) {
	a := newTestApp(t, &fakeProvider{failTickers: map[string]bool{"BADCO": true}})
	a.watchlist = []string{"BADCO"}

	if err := a.RunOnce(context.Background()); err == nil {
		t.Error("expected error when every watchlist analysis fails")
	}
}
