// Package financialhealth grades balance-sheet durability from SEC filings,
// independent of the market-data provider's snapshot.
package financialhealth

import (
	"context"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/provider/edgar"
	"go.uber.org/zap"
)

// FactsSource is the slice of the EDGAR client this analyzer needs.
type FactsSource interface {
	CompanyFacts(ctx context.Context, ticker string) (*edgar.Facts, error)
}

// Analyzer grades cash flow, profitability and leverage on a letter scale.
// Filing data takes precedence; the provider snapshot fills leverage, which
// EDGAR facts do not carry in the subset fetched.
type Analyzer struct {
	facts  FactsSource
	logger *zap.Logger
}

func New(facts FactsSource, logger *zap.Logger) *Analyzer {
	return &Analyzer{facts: facts, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisFinancialHealth }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	netIncome := m.NetIncome
	revenue := m.TotalRevenue
	fcf := m.FreeCashFlow
	source := "provider"

	if a.facts != nil {
		if facts, err := a.facts.CompanyFacts(ctx, ticker); err == nil {
			source = "edgar"
			if facts.HasNetIncome {
				netIncome = facts.NetIncome
			}
			if facts.HasRevenue {
				revenue = facts.Revenue
			}
			if v, ok := facts.FreeCashFlow(); ok {
				fcf = v
			}
		} else if a.logger != nil {
			a.logger.Debug("edgar facts unavailable, grading from provider data",
				zap.String("ticker", ticker), zap.Error(err))
		}
	}

	var score, factors int

	// Cash generation.
	if fcf != 0 || m.Has("free_cash_flow") {
		factors++
		if fcf > 0 && netIncome > 0 && fcf > netIncome*0.8 {
			score += 2
		} else if fcf > 0 {
			score++
		}
	}
	// Profitability.
	if revenue > 0 {
		factors++
		margin := netIncome / revenue
		if margin > 0.10 {
			score += 2
		} else if margin > 0 {
			score++
		}
	}
	// Leverage.
	if m.Has("debt_to_equity") {
		factors++
		if m.DebtToEquity < 0.5 {
			score += 2
		} else if m.DebtToEquity < 1.5 {
			score++
		}
	}
	// Liquidity.
	if m.Has("current_ratio") {
		factors++
		if m.CurrentRatio > 1.5 {
			score += 2
		} else if m.CurrentRatio > 1.0 {
			score++
		}
	}

	if factors == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "no health factors measurable")
	}

	avg := float64(score) / float64(factors)
	grade := gradeFor(avg)

	if a.logger != nil {
		a.logger.Debug("financial health",
			zap.String("ticker", ticker),
			zap.String("grade", grade),
			zap.String("source", source))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: recommend(grade),
		Confidence:     confidenceFor(factors),
		Details: map[string]any{
			"health_grade":     grade,
			"avg_factor_score": avg,
			"factors_measured": factors,
			"data_source":      source,
			"free_cash_flow":   fcf,
			"net_margin":       marginOrZero(netIncome, revenue),
		},
	}
}

func marginOrZero(netIncome, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return netIncome / revenue
}

func gradeFor(avg float64) string {
	switch {
	case avg >= 1.8:
		return "A"
	case avg >= 1.5:
		return "B+"
	case avg >= 1.2:
		return "B"
	case avg >= 0.8:
		return "C"
	case avg >= 0.4:
		return "D"
	default:
		return "F"
	}
}

func recommend(grade string) core.RecommendationLabel {
	switch grade {
	case "A", "B+":
		return core.Buy
	case "B", "C":
		return core.Hold
	case "D":
		return core.Monitor
	default:
		return core.Sell
	}
}

func confidenceFor(factors int) core.Confidence {
	switch {
	case factors >= 4:
		return core.ConfidenceHigh
	case factors >= 2:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}
