// Package comparable values a company against target industry multiples.
package comparable

import (
	"context"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Multiples are the target valuation multiples applied to fundamentals.
type Multiples struct {
	PE float64
	PS float64
}

// DefaultMultiples reflects broad-market medians.
var DefaultMultiples = Multiples{PE: 18, PS: 2.5}

// Analyzer estimates fair value from P/E and P/S multiples and averages the
// estimates that could be computed.
type Analyzer struct {
	multiples Multiples
	logger    *zap.Logger
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{multiples: DefaultMultiples, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisComparable }

// Applicable covers operating companies including financials. Funds have no
// fundamentals to multiply and startups have no stable earnings base.
func (a *Analyzer) Applicable(ct core.CompanyType) bool {
	switch ct {
	case core.CompanyETF, core.CompanyStartupLossMaking:
		return false
	}
	return true
}

func (a *Analyzer) Analyze(_ context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}
	if m.SharesOutstanding <= 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "shares outstanding unavailable")
	}

	fairValues := map[string]float64{}
	if m.NetIncome > 0 {
		eps := m.NetIncome / m.SharesOutstanding
		fairValues["pe_fair_value"] = eps * a.multiples.PE
	}
	if m.TotalRevenue > 0 {
		rps := m.TotalRevenue / m.SharesOutstanding
		fairValues["ps_fair_value"] = rps * a.multiples.PS
	}
	if len(fairValues) == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindComputationFailed,
			"no positive earnings or revenue to apply multiples to")
	}

	var sum float64
	for _, v := range fairValues {
		sum += v
	}
	fair := sum / float64(len(fairValues))

	current := actx.CurrentPrice
	if current <= 0 {
		current = m.CurrentPrice
	}
	var upside float64
	if current > 0 {
		upside = (fair - current) / current * 100
	}

	if a.logger != nil {
		a.logger.Debug("comparable valuation",
			zap.String("ticker", ticker),
			zap.Float64("fair_value", fair),
			zap.Int("multiples_used", len(fairValues)))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: labelForUpside(upside),
		PredictedPrice: &fair,
		Confidence:     core.ConfidenceMedium,
		Details: map[string]any{
			"fair_values":         fairValues,
			"upside_downside_pct": upside,
			"target_multiples":    map[string]float64{"pe": a.multiples.PE, "ps": a.multiples.PS},
		},
	}
}

func labelForUpside(upside float64) core.RecommendationLabel {
	switch {
	case upside > 25:
		return core.StrongBuy
	case upside > 10:
		return core.Buy
	case upside < -25:
		return core.StrongSell
	case upside < -10:
		return core.Sell
	default:
		return core.Hold
	}
}
