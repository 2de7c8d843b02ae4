// Package competitiveposition judges where a company sits relative to its
// rivals: margins, returns on capital and an LLM's qualitative read.
package competitiveposition

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You are a competitive strategy analyst. Respond with a single JSON object and nothing else.`

type Analyzer struct {
	llm    llm.Provider
	logger *zap.Logger
}

func New(provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: provider, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisCompetitivePosition }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

type positionReply struct {
	MarketPosition string   `json:"market_position"`
	Moat           string   `json:"moat"`
	Threats        []string `json:"threats"`
	Summary        string   `json:"summary"`
}

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	// Quantitative base: profitability relative to broad-market norms.
	var margin float64
	if m.TotalRevenue > 0 {
		margin = m.NetIncome / m.TotalRevenue
	}
	strength := positionStrength(margin, m.ROE)

	details := map[string]any{
		"net_margin":        margin,
		"roe":               m.ROE,
		"position_strength": strength,
	}

	if reply, err := a.askLLM(ctx, ticker, m); err == nil {
		details["market_position"] = reply.MarketPosition
		details["moat"] = reply.Moat
		details["threats"] = reply.Threats
		details["summary"] = reply.Summary
		details["assessment_method"] = "llm"
		// The model's read overrides the quantitative screen when stronger
		// in either direction.
		if reply.MarketPosition == "Strong" && strength == "Moderate" {
			strength = "Strong"
		} else if reply.MarketPosition == "Weak" && strength == "Moderate" {
			strength = "Weak"
		}
		details["position_strength"] = strength
	} else {
		details["assessment_method"] = "fundamentals"
		if a.logger != nil {
			a.logger.Debug("competitive position llm unavailable",
				zap.String("ticker", ticker), zap.Error(err))
		}
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: recommend(strength),
		Confidence:     core.ConfidenceMedium,
		Details:        details,
	}
}

func (a *Analyzer) askLLM(ctx context.Context, ticker string, m *core.FinancialMetrics) (*positionReply, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("no llm provider configured")
	}

	prompt := fmt.Sprintf(`Assess the competitive position of %s (%s) in %s / %s.
Market cap $%.0f, revenue $%.0f, ROE %.1f%%.

Respond with JSON:
{"market_position": "Strong/Moderate/Weak", "moat": "Wide/Narrow/None", "threats": ["..."], "summary": "one paragraph"}`,
		m.LongName, ticker, m.Sector, m.Industry, m.MarketCap, m.TotalRevenue, m.ROE*100)

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens:    512,
		Temperature:  0.3,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	raw, ok := analyzer.ExtractJSON(resp.Content)
	if !ok {
		return nil, fmt.Errorf("unparseable llm reply")
	}
	var reply positionReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

func positionStrength(margin, roe float64) string {
	score := 0
	if margin > 0.15 {
		score += 2
	} else if margin > 0.05 {
		score++
	}
	if roe > 0.20 {
		score += 2
	} else if roe > 0.10 {
		score++
	}

	switch {
	case score >= 3:
		return "Strong"
	case score >= 1:
		return "Moderate"
	default:
		return "Weak"
	}
}

func recommend(strength string) core.RecommendationLabel {
	switch strength {
	case "Strong":
		return core.Buy
	case "Weak":
		return core.Monitor
	default:
		return core.Hold
	}
}
