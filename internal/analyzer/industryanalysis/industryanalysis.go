// Package industryanalysis runs after the first analysis wave and places the
// per-method results in industry context. It is the only analyzer that reads
// sibling results, which is why the orchestrator defers it.
package industryanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/llm"
	"go.uber.org/zap"
)

const systemPrompt = `You are an industry analyst. Respond with a single JSON object and nothing else.`

type Analyzer struct {
	llm    llm.Provider
	logger *zap.Logger
}

func New(provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{llm: provider, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisIndustry }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	m := actx.Metrics
	if m == nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "financial metrics unavailable")
	}

	completed := okSiblings(actx.Siblings)
	if len(completed) == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable,
			"no completed analyses to contextualize")
	}

	bullish, bearish := tally(completed)

	details := map[string]any{
		"industry":          m.Industry,
		"sector":            m.Sector,
		"methods_reviewed":  methodNames(completed),
		"bullish_methods":   bullish,
		"bearish_methods":   bearish,
		"assessment_method": "consensus",
	}

	rec := consensusLean(bullish, bearish)

	if reply, err := a.askLLM(ctx, ticker, m, completed); err == nil {
		details["industry_outlook"] = reply.Outlook
		details["tailwinds"] = reply.Tailwinds
		details["headwinds"] = reply.Headwinds
		details["assessment_method"] = "llm"
		// A clearly negative industry read caps the stance at Hold.
		if strings.EqualFold(reply.Outlook, "negative") && (rec == core.Buy || rec == core.StrongBuy) {
			rec = core.Hold
		}
	} else if a.logger != nil {
		a.logger.Debug("industry llm unavailable, using method consensus",
			zap.String("ticker", ticker), zap.Error(err))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		Confidence:     core.ConfidenceMedium,
		Details:        details,
	}
}

func okSiblings(siblings map[core.AnalysisType]core.AnalyzerResult) []core.AnalyzerResult {
	var out []core.AnalyzerResult
	for _, r := range siblings {
		if r.OK() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func methodNames(results []core.AnalyzerResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = string(r.Type)
	}
	return names
}

func tally(results []core.AnalyzerResult) (bullish, bearish int) {
	for _, r := range results {
		switch r.Recommendation {
		case core.StrongBuy, core.Buy, core.SpeculativeBuy:
			bullish++
		case core.Sell, core.StrongSell:
			bearish++
		}
	}
	return bullish, bearish
}

func consensusLean(bullish, bearish int) core.RecommendationLabel {
	switch {
	case bullish >= bearish+3:
		return core.Buy
	case bearish >= bullish+3:
		return core.Sell
	case bullish > bearish:
		return core.Hold
	case bearish > bullish:
		return core.Monitor
	default:
		return core.Hold
	}
}

type industryReply struct {
	Outlook   string   `json:"outlook"`
	Tailwinds []string `json:"tailwinds"`
	Headwinds []string `json:"headwinds"`
}

func (a *Analyzer) askLLM(ctx context.Context, ticker string, m *core.FinancialMetrics, completed []core.AnalyzerResult) (*industryReply, error) {
	if a.llm == nil {
		return nil, fmt.Errorf("no llm provider configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Assess the industry outlook for %s (%s) in %s / %s.\n\n", m.LongName, ticker, m.Sector, m.Industry)
	sb.WriteString("## Completed method views\n")
	for _, r := range completed {
		fmt.Fprintf(&sb, "- %s: %s\n", r.Type, r.Recommendation)
	}
	sb.WriteString("\nRespond with JSON: {\"outlook\": \"Positive/Neutral/Negative\", \"tailwinds\": [\"...\"], \"headwinds\": [\"...\"]}")

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: sb.String()}},
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
	var reply industryReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
