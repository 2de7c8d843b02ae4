// Package businessmodel classifies how a company makes money and judges the
// durability of that model. An LLM refines the classification when
// available; sector and industry tables cover the offline path.
package businessmodel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You classify company business models. Respond with a single JSON object and nothing else.`

// ModelType is the closed set of business-model classifications.
type ModelType string

const (
	ModelB2BSaaS           ModelType = "b2b_saas"
	ModelB2CSubscription   ModelType = "b2c_subscription"
	ModelMarketplace       ModelType = "marketplace"
	ModelTraditionalRetail ModelType = "traditional_retail"
	ModelManufacturing     ModelType = "manufacturing"
	ModelFinancialServices ModelType = "financial_services"
	ModelAdvertising       ModelType = "advertising_based"
	ModelAssetHeavy        ModelType = "asset_heavy"
	ModelPlatform          ModelType = "platform"
)

// recurringEstimate is the assumed recurring-revenue share per model.
var recurringEstimate = map[ModelType]float64{
	ModelB2BSaaS:           0.85,
	ModelB2CSubscription:   0.80,
	ModelFinancialServices: 0.70,
	ModelMarketplace:       0.60,
	ModelAssetHeavy:        0.75,
	ModelAdvertising:       0.40,
	ModelTraditionalRetail: 0.20,
	ModelManufacturing:     0.30,
	ModelPlatform:          0.50,
}

// scalability scores how cheaply each model adds the next customer.
var scalability = map[ModelType]int{
	ModelB2BSaaS:           9,
	ModelPlatform:          9,
	ModelAdvertising:       8,
	ModelMarketplace:       8,
	ModelB2CSubscription:   7,
	ModelFinancialServices: 6,
	ModelTraditionalRetail: 4,
	ModelManufacturing:     3,
	ModelAssetHeavy:        2,
}

type Analyzer struct {
	llm    llm.Provider
	logger *zap.Logger
}

func New(provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: provider, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisBusinessModel }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	model, method := a.classify(ctx, ticker, m)

	recurring := recurringEstimate[model]
	scale := scalability[model]

	// Moat assessment from model durability plus fundamental strength.
	moat := "Narrow"
	if scale >= 8 && m.ROE > 0.15 {
		moat = "Wide"
	} else if scale <= 3 && m.ROE < 0.08 {
		moat = "None"
	}

	rec := recommend(moat, recurring, m.YearlyRevenueGrowth)

	if a.logger != nil {
		a.logger.Debug("business model",
			zap.String("ticker", ticker),
			zap.String("model", string(model)),
			zap.String("method", method))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		Confidence:     core.ConfidenceMedium,
		Details: map[string]any{
			"business_model":        string(model),
			"recurring_revenue_pct": recurring,
			"scalability_score":     scale,
			"competitive_moat":      moat,
			"classification_method": method,
		},
	}
}

// classify asks the LLM first and falls back to sector tables.
func (a *Analyzer) classify(ctx context.Context, ticker string, m *core.FinancialMetrics) (ModelType, string) {
	if a.llm != nil {
		if model, err := a.classifyWithLLM(ctx, ticker, m); err == nil {
			return model, "llm"
		} else if a.logger != nil {
			a.logger.Debug("llm classification failed, using tables", zap.Error(err))
		}
	}
	return classifyFromTables(m), "tables"
}

func (a *Analyzer) classifyWithLLM(ctx context.Context, ticker string, m *core.FinancialMetrics) (ModelType, error) {
	prompt := fmt.Sprintf(`Classify the business model of %s (%s).
Sector: %s, Industry: %s, Revenue: $%.0f.

Respond with JSON: {"model": "<one of b2b_saas, b2c_subscription, marketplace, traditional_retail, manufacturing, financial_services, advertising_based, asset_heavy, platform>"}`,
		m.LongName, ticker, m.Sector, m.Industry, m.TotalRevenue)

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    128,
		Temperature:  0,
		JSONMode:     true,
	})
	if err != nil {
		return "", err
	}

	raw, ok := analyzer.ExtractJSON(resp.Content)
	if !ok {
		return "", fmt.Errorf("unparseable llm reply")
	}
	var reply struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", err
	}
	model := ModelType(strings.ToLower(strings.TrimSpace(reply.Model)))
	if _, known := recurringEstimate[model]; !known {
		return "", fmt.Errorf("unknown model %q", reply.Model)
	}
	return model, nil
}

func classifyFromTables(m *core.FinancialMetrics) ModelType {
	sector, industry := m.Sector, m.Industry

	switch {
	case strings.Contains(sector, "Technology"):
		if strings.Contains(industry, "Software") {
			return ModelB2BSaaS
		}
		if strings.Contains(industry, "Consumer Electronics") {
			return ModelPlatform
		}
		return ModelB2BSaaS
	case strings.Contains(sector, "Financial"):
		return ModelFinancialServices
	case strings.Contains(sector, "Consumer Cyclical"):
		if strings.Contains(industry, "Internet Retail") || strings.Contains(industry, "E-Commerce") {
			return ModelMarketplace
		}
		return ModelTraditionalRetail
	case strings.Contains(sector, "Communication"):
		return ModelB2CSubscription
	case strings.Contains(sector, "Real Estate"):
		return ModelAssetHeavy
	case strings.Contains(sector, "Healthcare"):
		if strings.Contains(industry, "Biotechnology") {
			return ModelManufacturing
		}
		return ModelB2BSaaS
	default:
		return ModelManufacturing
	}
}

func recommend(moat string, recurring, growth float64) core.RecommendationLabel {
	switch {
	case moat == "Wide" && recurring >= 0.6:
		return core.Buy
	case moat == "None" && growth < 0:
		return core.Sell
	case moat == "None":
		return core.Monitor
	default:
		return core.Hold
	}
}
