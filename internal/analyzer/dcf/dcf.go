// Package dcf values a company by discounting projected free cash flow.
package dcf

import (
	"context"
	"fmt"
	"math"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Analyzer implements a five-year two-stage DCF with a Gordon terminal value.
type Analyzer struct {
	DiscountRate   float64
	TerminalGrowth float64
	MaxCAGR        float64
	Years          int

	logger *zap.Logger
}

// New creates a DCF analyzer with conservative default parameters.
func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{
		DiscountRate:   0.09,
		TerminalGrowth: 0.025,
		MaxCAGR:        0.15,
		Years:          5,
		logger:         logger,
	}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisDCF }

// Applicable excludes loss-making startups (no cash flow to discount),
// financials (balance-sheet driven business model) and funds.
func (a *Analyzer) Applicable(ct core.CompanyType) bool {
	switch ct {
	case core.CompanyMatureProfitable, core.CompanyGrowthProfitable,
		core.CompanyTurnaround, core.CompanyCyclical,
		core.CompanyCommodity, core.CompanyREIT:
		return true
	}
	return false
}

func (a *Analyzer) Analyze(_ context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil || !m.Has("free_cash_flow") {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "free cash flow unavailable")
	}
	if m.FreeCashFlow <= 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindComputationFailed,
			fmt.Sprintf("non-positive free cash flow %.0f, DCF undefined", m.FreeCashFlow))
	}
	if m.SharesOutstanding <= 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "shares outstanding unavailable")
	}

	growth := m.YearlyRevenueGrowth
	if growth > a.MaxCAGR {
		growth = a.MaxCAGR
	}
	if growth < a.TerminalGrowth {
		growth = a.TerminalGrowth
	}

	// Stage one: explicit projection years, discounted to present.
	var pv float64
	fcf := m.FreeCashFlow
	for y := 1; y <= a.Years; y++ {
		fcf *= 1 + growth
		pv += fcf / math.Pow(1+a.DiscountRate, float64(y))
	}

	// Stage two: Gordon growth terminal value on the final projected year.
	terminal := fcf * (1 + a.TerminalGrowth) / (a.DiscountRate - a.TerminalGrowth)
	pv += terminal / math.Pow(1+a.DiscountRate, float64(a.Years))

	equity := pv + m.TotalCash - m.TotalDebt
	sharePrice := equity / m.SharesOutstanding
	if sharePrice < 0 {
		sharePrice = 0
	}

	current := actx.CurrentPrice
	if current <= 0 {
		current = m.CurrentPrice
	}
	var upside float64
	if current > 0 {
		upside = (sharePrice - current) / current * 100
	}

	confidence := core.ConfidenceMedium
	if actx.CompanyType == core.CompanyMatureProfitable {
		confidence = core.ConfidenceHigh
	}

	if a.logger != nil {
		a.logger.Debug("dcf valuation",
			zap.String("ticker", ticker),
			zap.Float64("share_price", sharePrice),
			zap.Float64("upside_pct", upside))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: labelForUpside(upside),
		PredictedPrice: &sharePrice,
		Confidence:     confidence,
		Details: map[string]any{
			"upside_downside_pct": upside,
			"total_equity_value":  equity,
			"valuation":           valuation(upside),
			"parameters_used": map[string]any{
				"max_cagr":        a.MaxCAGR,
				"terminal_growth": a.TerminalGrowth,
				"discount_rate":   a.DiscountRate,
				"growth_applied":  growth,
			},
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

func valuation(upside float64) string {
	switch {
	case upside > 20:
		return "Undervalued"
	case upside < -20:
		return "Overvalued"
	default:
		return "Fair Value"
	}
}
