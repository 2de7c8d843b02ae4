// Package analystconsensus folds the professional analyst view into the
// method set so it competes on equal footing with the in-house models.
package analystconsensus

import (
	"context"
	"fmt"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Source is the slice of the data provider this analyzer needs.
type Source interface {
	AnalystData(ctx context.Context, ticker string) (*core.AnalystData, error)
}

// Analyzer converts the consensus recommendation mean and price targets
// into the common result shape.
type Analyzer struct {
	source Source
	logger *zap.Logger
}

func New(source Source, logger *zap.Logger) *Analyzer {
	return &Analyzer{source: source, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisAnalystConsensus }

// Applicable everywhere; thinly covered names simply come back low
// confidence.
func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	data, err := a.source.AnalystData(ctx, ticker)
	if err != nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable,
			fmt.Sprintf("analyst data fetch failed: %v", err))
	}
	if data.AnalystCount == 0 && data.TargetPrice == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "no analyst coverage")
	}

	current := actx.CurrentPrice
	if current <= 0 && actx.Metrics != nil {
		current = actx.Metrics.CurrentPrice
	}

	details := map[string]any{
		"recommendation_mean": data.RecommendationMean,
		"num_analysts":        data.AnalystCount,
		"target_high":         data.TargetHigh,
		"target_low":          data.TargetLow,
	}
	if data.TargetPrice > 0 && current > 0 {
		details["upside_downside_pct"] = (data.TargetPrice - current) / current * 100
	}

	if a.logger != nil {
		a.logger.Debug("analyst consensus",
			zap.String("ticker", ticker),
			zap.Float64("mean", data.RecommendationMean),
			zap.Int("analysts", data.AnalystCount))
	}

	res := core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: labelFromMean(data.RecommendationMean),
		Confidence:     confidenceFromCoverage(data.AnalystCount),
		Details:        details,
	}
	if data.TargetPrice > 0 {
		target := data.TargetPrice
		res.PredictedPrice = &target
	}
	return res
}

// labelFromMean maps the 1..5 consensus scale (1 strong buy, 5 strong sell).
func labelFromMean(mean float64) core.RecommendationLabel {
	switch {
	case mean == 0:
		return core.Hold
	case mean <= 1.5:
		return core.StrongBuy
	case mean <= 2.5:
		return core.Buy
	case mean <= 3.5:
		return core.Hold
	case mean <= 4.5:
		return core.Sell
	default:
		return core.StrongSell
	}
}

func confidenceFromCoverage(analysts int) core.Confidence {
	switch {
	case analysts >= 10:
		return core.ConfidenceHigh
	case analysts >= 5:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}
