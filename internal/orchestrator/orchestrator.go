// Package orchestrator coordinates one full analysis run for a ticker:
// classify, fan out the applicable analyzers, consolidate, compare.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/classifier"
	"github.com/newthinker/insight/internal/comparison"
	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/provider"
	"github.com/newthinker/insight/internal/quality"
	"github.com/newthinker/insight/internal/recommendation"
	"go.uber.org/zap"
)

// baseline analyzers run for every company type.
var baseline = map[core.AnalysisType]bool{
	core.AnalysisTechnical:           true,
	core.AnalysisAIInsights:          true,
	core.AnalysisNewsSentiment:       true,
	core.AnalysisBusinessModel:       true,
	core.AnalysisCompetitivePosition: true,
	core.AnalysisManagementQuality:   true,
	core.AnalysisFinancialHealth:     true,
	core.AnalysisAnalystConsensus:    true,
	core.AnalysisRevenueStream:       true,
	core.AnalysisIndustry:            true,
}

// Observer receives timing and outcome events. Implementations must be
// cheap; they are called on the hot path.
type Observer interface {
	AnalyzerCompleted(t core.AnalysisType, seconds float64, outcome string)
	AnalysisCompleted(ticker string, seconds float64, failed bool)
}

// Orchestrator is safe for concurrent AnalyzeStock calls; all per-run state
// is local to the call.
type Orchestrator struct {
	provider    provider.DataProvider
	registry    *analyzer.Registry
	classifier  *classifier.Classifier
	quality     *quality.Calculator
	recommender *recommendation.Service
	comparer    *comparison.Service
	observer    Observer
	cfg         config.OrchestratorConfig
	logger      *zap.Logger
}

// New creates an orchestrator. observer may be nil.
func New(
	dataProvider provider.DataProvider,
	registry *analyzer.Registry,
	cls *classifier.Classifier,
	qc *quality.Calculator,
	recommender *recommendation.Service,
	comparer *comparison.Service,
	observer Observer,
	cfg config.OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.AnalyzerTimeout <= 0 {
		cfg.AnalyzerTimeout = 30 * time.Second
	}
	if cfg.WaveTimeout <= 0 {
		cfg.WaveTimeout = 60 * time.Second
	}
	return &Orchestrator{
		provider:    dataProvider,
		registry:    registry,
		classifier:  cls,
		quality:     qc,
		recommender: recommender,
		comparer:    comparer,
		observer:    observer,
		cfg:         cfg,
		logger:      logger,
	}
}

// AnalyzeStock runs the full pipeline for one ticker. Only the baseline
// metrics fetch is fatal; every other failure is contained in its own
// analysis entry.
func (o *Orchestrator) AnalyzeStock(ctx context.Context, ticker string) (*core.AnalysisPayload, error) {
	start := time.Now()

	metrics, err := o.provider.FinancialMetrics(ctx, ticker)
	if err != nil {
		if o.observer != nil {
			o.observer.AnalysisCompleted(ticker, time.Since(start).Seconds(), true)
		}
		return nil, core.WrapError(core.ErrMetricsUnavailable,
			fmt.Errorf("failed to get financial data for %s: %w", ticker, err))
	}

	prices, err := o.provider.PriceData(ctx, ticker)
	if err != nil {
		prices = nil
		if o.logger != nil {
			o.logger.Warn("price history unavailable, price-driven analyzers will degrade",
				zap.String("ticker", ticker), zap.Error(err))
		}
	}

	companyType := o.classifier.Classify(ticker, metrics)
	qualityScore := o.quality.Calculate(metrics)

	currentPrice := metrics.CurrentPrice
	if currentPrice <= 0 && prices != nil {
		currentPrice = prices.CurrentPrice
	}

	actx := &analyzer.Context{
		Metrics:      metrics,
		Prices:       prices,
		CompanyType:  companyType,
		QualityGrade: qualityScore.Grade,
		CurrentPrice: currentPrice,
	}

	waveOne, deferred, skipped := o.applicableSet(companyType)

	if o.logger != nil {
		o.logger.Info("starting analysis",
			zap.String("ticker", ticker),
			zap.String("company_type", string(companyType)),
			zap.Int("analyzers", len(waveOne)+len(deferred)))
	}

	results := o.runWave(ctx, ticker, actx, waveOne)
	for _, r := range skipped {
		results[r.Type] = r
	}
	injectPrice(results, currentPrice)

	// The deferred wave sees the completed first-wave results, current
	// price already injected.
	if len(deferred) > 0 {
		dctx := *actx
		dctx.Siblings = cloneResults(results)
		for t, r := range o.runWave(ctx, ticker, &dctx, deferred) {
			results[t] = r
		}
		injectPrice(results, currentPrice)
	}

	payload := &core.AnalysisPayload{
		ID:            uuid.NewString(),
		Ticker:        ticker,
		CompanyType:   companyType,
		Metrics:       metrics,
		QualityScore:  qualityScore,
		Analyses:      results,
		AnalysesCount: len(results),
		GeneratedAt:   time.Now().UTC(),
	}

	// Any non-empty analyses map yields a recommendation; an all-error run
	// consolidates to Hold with Low confidence.
	if len(results) > 0 {
		payload.Recommendation = o.recommender.Generate(ticker, results)
	}
	if o.comparer != nil {
		payload.AnalystComparison = o.comparer.Compare(ctx, ticker, results, currentPrice)
	}

	payload.ExecutionSeconds = time.Since(start).Seconds()
	if o.observer != nil {
		o.observer.AnalysisCompleted(ticker, payload.ExecutionSeconds, false)
	}
	if o.logger != nil {
		o.logger.Info("analysis complete",
			zap.String("ticker", ticker),
			zap.Int("analyses", payload.AnalysesCount),
			zap.Float64("seconds", payload.ExecutionSeconds))
	}
	return payload, nil
}

// applicableSet resolves the analyzers to run for a company type, split
// into the concurrent first wave and the deferred wave that needs sibling
// results. The static matrix gates first; each analyzer's own predicate
// gates second, and a predicate rejection is recorded as a not-applicable
// result rather than silently dropped.
func (o *Orchestrator) applicableSet(ct core.CompanyType) (waveOne, deferred []analyzer.Analyzer, skipped []core.AnalyzerResult) {
	for _, a := range o.registry.All() {
		t := a.Type()
		if !o.typeApplies(t, ct) {
			continue
		}
		if !a.Applicable(ct) {
			skipped = append(skipped, core.NotApplicable(t, ct))
			continue
		}
		if t == core.AnalysisIndustry {
			deferred = append(deferred, a)
		} else {
			waveOne = append(waveOne, a)
		}
	}
	return waveOne, deferred, skipped
}

// typeApplies is the static applicability matrix: the baseline set plus
// type-specific additions.
func (o *Orchestrator) typeApplies(t core.AnalysisType, ct core.CompanyType) bool {
	if baseline[t] {
		return true
	}
	switch t {
	case core.AnalysisStartup:
		return ct == core.CompanyStartupLossMaking
	case core.AnalysisDCF:
		switch ct {
		case core.CompanyMatureProfitable, core.CompanyGrowthProfitable,
			core.CompanyCyclical, core.CompanyTurnaround,
			core.CompanyCommodity, core.CompanyREIT:
			return true
		}
		return false
	case core.AnalysisComparable:
		switch ct {
		case core.CompanyMatureProfitable, core.CompanyGrowthProfitable,
			core.CompanyCyclical, core.CompanyTurnaround,
			core.CompanyCommodity, core.CompanyREIT, core.CompanyFinancial:
			return true
		}
		return false
	}
	return false
}

// runWave executes analyzers on a bounded worker pool under the wave
// budget. Every analyzer yields exactly one result: success, reported
// failure, timeout, or recovered panic.
func (o *Orchestrator) runWave(ctx context.Context, ticker string, actx *analyzer.Context, wave []analyzer.Analyzer) map[core.AnalysisType]core.AnalyzerResult {
	results := make(map[core.AnalysisType]core.AnalyzerResult, len(wave))
	if len(wave) == 0 {
		return results
	}

	waveCtx, cancel := context.WithTimeout(ctx, o.cfg.WaveTimeout)
	defer cancel()

	workers := o.cfg.Workers
	if workers > len(wave) {
		workers = len(wave)
	}

	jobs := make(chan analyzer.Analyzer)
	out := make(chan core.AnalyzerResult, len(wave))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for a := range jobs {
				out <- o.runOne(waveCtx, ticker, actx, a)
			}
		}()
	}

	go func() {
		for _, a := range wave {
			jobs <- a
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		results[r.Type] = r
	}
	return results
}

// runOne applies the per-analyzer timeout and recovers panics at the
// dispatch boundary, so a buggy analyzer degrades to a failed entry
// instead of taking down the run.
func (o *Orchestrator) runOne(ctx context.Context, ticker string, actx *analyzer.Context, a analyzer.Analyzer) core.AnalyzerResult {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.AnalyzerTimeout)
	defer cancel()

	done := make(chan core.AnalyzerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if o.logger != nil {
					o.logger.Error("analyzer panicked",
						zap.String("ticker", ticker),
						zap.String("analyzer", string(a.Type())),
						zap.Any("panic", r))
				}
				done <- core.AnalyzerFailure(a.Type(), core.ErrKindComputationFailed,
					fmt.Sprintf("analyzer panic: %v", r))
			}
		}()
		done <- a.Analyze(runCtx, ticker, actx)
	}()

	var res core.AnalyzerResult
	select {
	case res = <-done:
	case <-runCtx.Done():
		res = core.AnalyzerFailure(a.Type(), core.ErrKindTimeout,
			fmt.Sprintf("%s timed out after %s", a.Type(), time.Since(start).Round(time.Millisecond)))
	}

	elapsed := time.Since(start).Seconds()
	if o.observer != nil {
		o.observer.AnalyzerCompleted(a.Type(), elapsed, outcome(res))
	}
	if res.Err != nil && o.logger != nil {
		o.logger.Warn("analyzer failed",
			zap.String("ticker", ticker),
			zap.String("analyzer", string(a.Type())),
			zap.String("kind", string(res.Err.Kind)),
			zap.String("error", res.Err.Message))
	}
	return res
}

func outcome(r core.AnalyzerResult) string {
	switch {
	case r.OK():
		return "success"
	case r.Err != nil:
		return string(r.Err.Kind)
	default:
		return "not_applicable"
	}
}

// injectPrice stamps the shared price reference on every successful result,
// regardless of which analyzer produced it.
func injectPrice(results map[core.AnalysisType]core.AnalyzerResult, currentPrice float64) {
	if currentPrice <= 0 {
		return
	}
	for t, r := range results {
		if r.OK() {
			cp := currentPrice
			r.CurrentPrice = &cp
			results[t] = r
		}
	}
}

func cloneResults(results map[core.AnalysisType]core.AnalyzerResult) map[core.AnalysisType]core.AnalyzerResult {
	out := make(map[core.AnalysisType]core.AnalyzerResult, len(results))
	for t, r := range results {
		out[t] = r
	}
	return out
}
