// Package quality scores data completeness and fundamental quality on a
// 0-100 scale with a letter grade. Several analyzers weight their own output
// by the grade, so the calculator stays a pure function of the metrics bag.
package quality

import "github.com/newthinker/insight/internal/core"

// Calculator computes quality scores from financial metrics.
type Calculator struct{}

// NewCalculator creates a quality score calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate scores the metrics bag. Missing fields accrue a penalty that
// lowers both the score and the reported data quality.
func (c *Calculator) Calculate(m *core.FinancialMetrics) core.QualityScore {
	if m == nil {
		return core.QualityScore{Grade: "D", DataQuality: "Low"}
	}

	score := 0
	penalty := 0

	// Profitability (25 points)
	if m.Has("roe") {
		switch {
		case m.ROE > 0.15:
			score += 15
		case m.ROE > 0.10:
			score += 10
		case m.ROE > 0.05:
			score += 5
		}
	} else {
		penalty += 3
	}
	if m.NetIncome > 0 {
		score += 10
	}

	// Financial health (25 points)
	if m.Has("debt_to_equity") {
		switch {
		case m.DebtToEquity < 0.3:
			score += 15
		case m.DebtToEquity < 0.6:
			score += 10
		case m.DebtToEquity < 1.0:
			score += 5
		}
	} else {
		penalty += 2
	}
	if m.Has("current_ratio") {
		switch {
		case m.CurrentRatio > 2.0:
			score += 10
		case m.CurrentRatio > 1.5:
			score += 7
		case m.CurrentRatio > 1.0:
			score += 5
		}
	} else {
		penalty++
	}

	// Growth (25 points)
	if m.Has("yearly_revenue_growth") {
		switch {
		case m.YearlyRevenueGrowth > 0.20:
			score += 15
		case m.YearlyRevenueGrowth > 0.10:
			score += 10
		case m.YearlyRevenueGrowth > 0.05:
			score += 5
		}
	} else {
		penalty += 2
	}
	if m.Has("earnings_growth") {
		switch {
		case m.EarningsGrowth > 0.15:
			score += 10
		case m.EarningsGrowth > 0.10:
			score += 7
		case m.EarningsGrowth > 0.05:
			score += 5
		}
	} else {
		penalty++
	}

	// Valuation (25 points). PE bands are lenient toward growth names.
	if m.Has("pe_ratio") && m.PERatio > 0 {
		switch {
		case m.PERatio > 10 && m.PERatio < 25:
			score += 15
		case m.PERatio > 8 && m.PERatio < 35:
			score += 10
		case m.PERatio < 50:
			score += 5
		}
	} else {
		penalty += 2
	}
	if m.Has("pb_ratio") && m.PBRatio > 0 {
		switch {
		case m.PBRatio > 1 && m.PBRatio < 3:
			score += 10
		case m.PBRatio < 5:
			score += 7
		case m.PBRatio < 8:
			score += 5
		}
	} else {
		penalty++
	}

	final := score - penalty
	if final < 0 {
		final = 0
	}

	return core.QualityScore{
		Score:          final,
		Grade:          grade(final),
		DataQuality:    dataQuality(penalty),
		MissingPenalty: penalty,
	}
}

func grade(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

func dataQuality(penalty int) string {
	switch {
	case penalty <= 3:
		return "High"
	case penalty <= 7:
		return "Medium"
	default:
		return "Low"
	}
}
