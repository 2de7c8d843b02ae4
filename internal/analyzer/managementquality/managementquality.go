// Package managementquality scores capital allocation discipline from the
// numbers management actually produced: returns, growth delivery and
// balance-sheet restraint.
package managementquality

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You assess company management quality. Respond with a single JSON object and nothing else.`

type Analyzer struct {
	llm    llm.Provider
	logger *zap.Logger
}

func New(provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: provider, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisManagementQuality }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	score, factors := scoreManagement(m)

	details := map[string]any{
		"management_score": score,
		"score_factors":    factors,
	}

	if commentary, err := a.askLLM(ctx, ticker, m); err == nil {
		details["commentary"] = commentary
		details["assessment_method"] = "llm"
	} else {
		details["assessment_method"] = "fundamentals"
		if a.logger != nil {
			a.logger.Debug("management quality llm unavailable",
				zap.String("ticker", ticker), zap.Error(err))
		}
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: recommend(score),
		Confidence:     core.ConfidenceMedium,
		Details:        details,
	}
}

// scoreManagement rates capital allocation on a 0..100 scale.
func scoreManagement(m *core.FinancialMetrics) (int, []string) {
	score := 50
	var factors []string

	switch {
	case m.ROE > 0.20:
		score += 20
		factors = append(factors, "ROE above 20%")
	case m.ROE > 0.10:
		score += 10
		factors = append(factors, "ROE above 10%")
	case m.ROE < 0:
		score -= 15
		factors = append(factors, "negative ROE")
	}

	switch {
	case m.EarningsGrowth > 0.15 && m.YearlyRevenueGrowth > 0.10:
		score += 15
		factors = append(factors, "earnings growing faster than revenue")
	case m.EarningsGrowth < 0 && m.YearlyRevenueGrowth > 0:
		score -= 10
		factors = append(factors, "revenue growth not reaching the bottom line")
	}

	switch {
	case m.DebtToEquity > 2:
		score -= 15
		factors = append(factors, "aggressive leverage")
	case m.DebtToEquity > 0 && m.DebtToEquity < 0.5:
		score += 10
		factors = append(factors, "conservative balance sheet")
	}

	if m.FreeCashFlow > 0 && m.NetIncome > 0 && m.FreeCashFlow > m.NetIncome {
		score += 10
		factors = append(factors, "cash conversion above reported earnings")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, factors
}

func (a *Analyzer) askLLM(ctx context.Context, ticker string, m *core.FinancialMetrics) (string, error) {
	if a.llm == nil {
		return "", fmt.Errorf("no llm provider configured")
	}

	prompt := fmt.Sprintf(`Briefly assess the management quality of %s (%s) given:
ROE %.1f%%, earnings growth %.1f%%, revenue growth %.1f%%, debt/equity %.2f, FCF $%.0f vs net income $%.0f.

Respond with JSON: {"commentary": "two or three sentences"}`,
		m.LongName, ticker, m.ROE*100, m.EarningsGrowth*100, m.YearlyRevenueGrowth*100,
		m.DebtToEquity, m.FreeCashFlow, m.NetIncome)

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    256,
		Temperature:  0.3,
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
		Commentary string `json:"commentary"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", err
	}
	return reply.Commentary, nil
}

func recommend(score int) core.RecommendationLabel {
	switch {
	case score >= 75:
		return core.Buy
	case score < 35:
		return core.Monitor
	default:
		return core.Hold
	}
}
