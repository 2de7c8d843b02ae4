// Package aiinsights asks an LLM for a qualitative read on a company's
// market position and growth prospects, with a fundamentals-based fallback
// when no model is reachable.
package aiinsights

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

const systemPrompt = `You are an equity research analyst. You respond with a single JSON object and nothing else.`

// Analyzer prompts the LLM chain for structured insights and converts them
// into a recommendation and target price.
type Analyzer struct {
	llm    llm.Provider
	logger *zap.Logger
}

func New(provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: provider, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisAIInsights }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

type insightsReply struct {
	MarketPosition       string   `json:"market_position"`
	GrowthProspects      string   `json:"growth_prospects"`
	CompetitiveAdvantage string   `json:"competitive_advantage"`
	Recommendation       string   `json:"recommendation"`
	TargetPrice          float64  `json:"target_price"`
	KeyRisks             []string `json:"key_risks"`
	Summary              string   `json:"summary"`
}

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	current := actx.CurrentPrice
	if current <= 0 {
		current = m.CurrentPrice
	}

	reply, provider, err := a.askLLM(ctx, ticker, m, current)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("ai insights llm unavailable, using fundamentals fallback",
				zap.String("ticker", ticker), zap.Error(err))
		}
		return a.fallback(m, current)
	}

	rec, ok := analyzer.ParseLabel(reply.Recommendation)
	if !ok {
		rec = core.Hold
	}

	details := map[string]any{
		"market_position":       reply.MarketPosition,
		"growth_prospects":      reply.GrowthProspects,
		"competitive_advantage": reply.CompetitiveAdvantage,
		"key_risks":             reply.KeyRisks,
		"summary":               reply.Summary,
		"ai_method":             provider,
	}

	res := core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		Confidence:     core.ConfidenceMedium,
		Details:        details,
	}
	target := reply.TargetPrice
	if target <= 0 && current > 0 {
		target = current * growthMultiplier(reply.GrowthProspects)
	}
	if target > 0 {
		res.PredictedPrice = &target
	}
	return res
}

func (a *Analyzer) askLLM(ctx context.Context, ticker string, m *core.FinancialMetrics, current float64) (*insightsReply, string, error) {
	if a.llm == nil {
		return nil, "", fmt.Errorf("no llm provider configured")
	}

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(ticker, m, current)},
		},
		MaxTokens:   1024,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		return nil, "", err
	}

	var reply insightsReply
	if err := json.Unmarshal([]byte(resp.Content), &reply); err != nil {
		raw, ok := analyzer.ExtractJSON(resp.Content)
		if !ok {
			return nil, "", fmt.Errorf("unparseable llm reply")
		}
		if err := json.Unmarshal(raw, &reply); err != nil {
			return nil, "", fmt.Errorf("decoding llm reply: %w", err)
		}
	}
	return &reply, resp.Provider, nil
}

func buildPrompt(ticker string, m *core.FinancialMetrics, current float64) string {
	var sb strings.Builder

	name := m.LongName
	if name == "" {
		name = ticker
	}
	fmt.Fprintf(&sb, "Analyze %s (%s) and provide investment insights.\n\n", name, ticker)
	fmt.Fprintf(&sb, "## Fundamentals\n")
	fmt.Fprintf(&sb, "- Sector: %s / %s\n", m.Sector, m.Industry)
	fmt.Fprintf(&sb, "- Market Cap: $%.0f\n", m.MarketCap)
	fmt.Fprintf(&sb, "- Current Price: $%.2f\n", current)
	fmt.Fprintf(&sb, "- Revenue: $%.0f (growth %.1f%%)\n", m.TotalRevenue, m.YearlyRevenueGrowth*100)
	fmt.Fprintf(&sb, "- Net Income: $%.0f\n", m.NetIncome)
	fmt.Fprintf(&sb, "- P/E: %.2f, P/B: %.2f, ROE: %.1f%%\n", m.PERatio, m.PBRatio, m.ROE*100)

	sb.WriteString(`
Respond with JSON:
{
  "market_position": "Strong/Moderate/Weak",
  "growth_prospects": "High/Moderate/Low",
  "competitive_advantage": "Strong/Moderate/Weak",
  "recommendation": "Strong Buy/Buy/Hold/Sell/Strong Sell",
  "target_price": <12-month target as a number>,
  "key_risks": ["..."],
  "summary": "one paragraph"
}`)
	return sb.String()
}

func growthMultiplier(prospects string) float64 {
	switch strings.ToLower(prospects) {
	case "high":
		return 1.15
	case "low":
		return 0.95
	default:
		return 1.05
	}
}

// fallback rates the company from fundamentals alone when no LLM responded.
func (a *Analyzer) fallback(m *core.FinancialMetrics, current float64) core.AnalyzerResult {
	score := 0
	if m.YearlyRevenueGrowth > 0.15 {
		score++
	}
	if m.ROE > 0.15 {
		score++
	}
	if m.NetIncome > 0 {
		score++
	}
	if m.DebtToEquity > 2 {
		score--
	}

	rec := core.Hold
	if score >= 3 {
		rec = core.Buy
	} else if score <= 0 {
		rec = core.Monitor
	}

	res := core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		Confidence:     core.ConfidenceLow,
		Details: map[string]any{
			"ai_method":         "fallback",
			"fundamental_score": score,
		},
	}
	if current > 0 {
		target := current
		res.PredictedPrice = &target
	}
	return res
}
