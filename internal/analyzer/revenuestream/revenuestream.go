// Package revenuestream characterizes the composition and durability of a
// company's revenue: model type, recurring share and growth quality.
package revenuestream

import (
	"context"
	"strings"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Model is a coarse revenue-model classification.
type Model string

const (
	ModelSubscription Model = "SaaS/Subscription"
	ModelRetail       Model = "Retail/E-commerce"
	ModelManufacture  Model = "Manufacturing"
	ModelFinancial    Model = "Financial Services"
	ModelHealthcare   Model = "Healthcare/Pharma"
	ModelEnergy       Model = "Energy/Utilities"
	ModelMedia        Model = "Media/Advertising"
	ModelDiversified  Model = "Diversified/Other"
)

// composition is the assumed revenue split per model.
var composition = map[Model]map[string]float64{
	ModelSubscription: {"recurring_revenue": 0.80, "one_time_revenue": 0.15, "services_revenue": 0.05},
	ModelRetail:       {"product_sales": 0.85, "marketplace_fees": 0.10, "advertising_revenue": 0.05},
	ModelManufacture:  {"product_sales": 0.90, "services_revenue": 0.08, "licensing_revenue": 0.02},
	ModelFinancial:    {"interest_income": 0.60, "fee_income": 0.30, "trading_revenue": 0.10},
	ModelHealthcare:   {"product_sales": 0.75, "licensing_revenue": 0.15, "services_revenue": 0.10},
	ModelEnergy:       {"commodity_sales": 0.80, "regulated_revenue": 0.15, "services_revenue": 0.05},
	ModelMedia:        {"advertising_revenue": 0.70, "subscription_revenue": 0.20, "content_licensing": 0.10},
	ModelDiversified:  {"primary_revenue": 0.70, "secondary_revenue": 0.20, "other_revenue": 0.10},
}

var recurringShare = map[Model]float64{
	ModelSubscription: 0.80,
	ModelFinancial:    0.65,
	ModelEnergy:       0.50,
	ModelMedia:        0.35,
	ModelHealthcare:   0.30,
	ModelManufacture:  0.25,
	ModelRetail:       0.15,
	ModelDiversified:  0.30,
}

type Analyzer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisRevenueStream }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(_ context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}
	if m.TotalRevenue <= 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "no revenue reported")
	}

	model := classify(m.Sector, m.Industry)
	recurring := recurringShare[model]
	growth := m.YearlyRevenueGrowth

	quality := revenueQuality(recurring, growth)

	if a.logger != nil {
		a.logger.Debug("revenue stream",
			zap.String("ticker", ticker),
			zap.String("model", string(model)),
			zap.String("quality", quality))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: recommend(quality, growth),
		Confidence:     core.ConfidenceMedium,
		Details: map[string]any{
			"revenue_model":      string(model),
			"composition":        composition[model],
			"recurring_pct":      recurring,
			"revenue_growth_yoy": growth,
			"revenue_quality":    quality,
			"total_revenue_ttm":  m.TotalRevenue,
		},
	}
}

func classify(sector, industry string) Model {
	s := strings.ToLower(sector)
	i := strings.ToLower(industry)

	switch {
	case strings.Contains(i, "software") || strings.Contains(i, "information technology"):
		return ModelSubscription
	case strings.Contains(i, "retail") || strings.Contains(i, "e-commerce"):
		return ModelRetail
	case strings.Contains(s, "financial") || strings.Contains(i, "bank") || strings.Contains(i, "insurance"):
		return ModelFinancial
	case strings.Contains(s, "healthcare") || strings.Contains(i, "pharmaceutical") || strings.Contains(i, "biotech"):
		return ModelHealthcare
	case strings.Contains(s, "energy") || strings.Contains(s, "utilities"):
		return ModelEnergy
	case strings.Contains(s, "communication") || strings.Contains(i, "advertising") || strings.Contains(i, "entertainment"):
		return ModelMedia
	case strings.Contains(s, "industrials") || strings.Contains(i, "manufactur") || strings.Contains(s, "materials"):
		return ModelManufacture
	default:
		return ModelDiversified
	}
}

func revenueQuality(recurring, growth float64) string {
	switch {
	case recurring >= 0.6 && growth > 0.10:
		return "High"
	case recurring >= 0.6 || growth > 0.15:
		return "Good"
	case growth < 0:
		return "Deteriorating"
	default:
		return "Average"
	}
}

func recommend(quality string, growth float64) core.RecommendationLabel {
	switch quality {
	case "High":
		return core.Buy
	case "Deteriorating":
		if growth < -0.10 {
			return core.Sell
		}
		return core.Monitor
	default:
		return core.Hold
	}
}
