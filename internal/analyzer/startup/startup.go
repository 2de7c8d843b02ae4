// Package startup analyzes loss-making companies on survival terms: cash
// runway, burn rate and growth quality instead of earnings multiples.
package startup

import (
	"context"
	"fmt"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Analyzer values a startup as a revenue multiple discounted by risk and
// stage, and recommends on runway and growth rather than valuation alone.
type Analyzer struct {
	BaseMultiple float64

	logger *zap.Logger
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{BaseMultiple: 2.0, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisStartup }

// Applicable only to loss-making startups.
func (a *Analyzer) Applicable(ct core.CompanyType) bool {
	return ct == core.CompanyStartupLossMaking
}

func (a *Analyzer) Analyze(_ context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	// Quarterly burn from annual free cash flow; runway from cash on hand.
	var burn, runwayYears float64
	if m.FreeCashFlow < 0 {
		burn = -m.FreeCashFlow / 4
		if m.TotalCash > 0 && burn > 0 {
			runwayYears = m.TotalCash / burn / 4
		}
	}

	growth := m.YearlyRevenueGrowth

	riskScore, riskFactors := assessRisk(runwayYears, growth, m.Sector)

	multiple := a.BaseMultiple * growthPremium(growth) * riskAdjustment(riskScore) * stageMultiple(m.TotalRevenue)

	var predicted float64
	if m.SharesOutstanding > 0 && m.TotalRevenue > 0 {
		netDebt := m.TotalDebt - m.TotalCash
		ev := m.TotalRevenue * multiple
		predicted = (ev - netDebt) / m.SharesOutstanding
		if predicted < 0 {
			predicted = 0
		}
	}

	rec := recommend(riskScore, runwayYears, growth)

	if a.logger != nil {
		a.logger.Debug("startup assessment",
			zap.String("ticker", ticker),
			zap.Float64("runway_years", runwayYears),
			zap.Int("risk_score", riskScore))
	}

	res := core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		Confidence:     core.ConfidenceLow,
		Details: map[string]any{
			"stage":              stage(m.TotalRevenue),
			"cash_runway_years":  runwayYears,
			"quarterly_burn":     burn,
			"revenue_growth":     growth,
			"risk_score":         riskScore,
			"risk_factors":       riskFactors,
			"revenue_multiple":   multiple,
			"investment_profile": "venture style, total loss possible",
		},
	}
	if predicted > 0 {
		res.PredictedPrice = &predicted
	}
	return res
}

func assessRisk(runwayYears, growth float64, sector string) (int, []string) {
	score := 0
	var factors []string

	switch {
	case runwayYears < 0.5:
		score += 40
		factors = append(factors, "less than 6 months cash runway")
	case runwayYears < 1:
		score += 30
		factors = append(factors, "less than 1 year cash runway")
	case runwayYears < 2:
		score += 20
		factors = append(factors, "less than 2 years cash runway")
	case runwayYears < 3:
		score += 10
		factors = append(factors, "less than 3 years cash runway")
	}

	switch {
	case growth < 0:
		score += 25
		factors = append(factors, "declining revenue")
	case growth < 0.10:
		score += 20
		factors = append(factors, "revenue growth below 10%")
	case growth < 0.20:
		score += 10
		factors = append(factors, "revenue growth below 20%")
	}

	switch sector {
	case "Biotechnology", "Energy", "Materials":
		score += 10
		factors = append(factors, fmt.Sprintf("%s carries high regulatory or commodity risk", sector))
	}

	if score > 100 {
		score = 100
	}
	return score, factors
}

func growthPremium(growth float64) float64 {
	switch {
	case growth > 1.0:
		return 3.0
	case growth > 0.5:
		return 2.5
	case growth > 0.3:
		return 2.0
	case growth > 0.15:
		return 1.5
	case growth > 0:
		return 1.0
	default:
		return 0.5
	}
}

func riskAdjustment(riskScore int) float64 {
	switch {
	case riskScore > 60:
		return 0.5
	case riskScore > 40:
		return 0.7
	case riskScore > 20:
		return 0.85
	default:
		return 1.0
	}
}

func stage(revenue float64) string {
	switch {
	case revenue < 1e6:
		return "Pre-Revenue/Seed"
	case revenue < 10e6:
		return "Early Stage"
	case revenue < 100e6:
		return "Growth Stage"
	default:
		return "Late Stage"
	}
}

func stageMultiple(revenue float64) float64 {
	switch {
	case revenue < 1e6:
		return 0.5
	case revenue < 10e6:
		return 0.7
	case revenue < 100e6:
		return 1.0
	default:
		return 1.2
	}
}

func recommend(riskScore int, runwayYears, growth float64) core.RecommendationLabel {
	switch {
	case riskScore > 70:
		return core.Sell
	case runwayYears < 0.5:
		return core.Sell
	case runwayYears < 1 && growth < 0.15:
		return core.Sell
	case runwayYears > 4 && growth > 0.40 && riskScore < 30:
		return core.SpeculativeBuy
	case runwayYears > 2 && growth > 0.25 && riskScore < 40:
		return core.Hold
	case growth > 0.75 && runwayYears > 1:
		return core.SpeculativeBuy
	case riskScore > 50:
		return core.Sell
	default:
		return core.Monitor
	}
}
