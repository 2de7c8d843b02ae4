// Package analyzer defines the uniform contract every analysis method
// implements and the process-wide registry the orchestrator dispatches from.
package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/newthinker/insight/internal/core"
)

// Context carries the shared per-ticker data handed to every analyzer.
type Context struct {
	Metrics      *core.FinancialMetrics
	Prices       *core.PriceData
	CompanyType  core.CompanyType
	QualityGrade string
	CurrentPrice float64

	// Siblings holds the completed wave-one results. Populated only for
	// analyzers that run in the deferred wave (industry analysis).
	Siblings map[core.AnalysisType]core.AnalyzerResult
}

// Analyzer is the polymorphic strategy contract. Analyze must contain its
// own failures: it returns an error-variant AnalyzerResult rather than
// propagating, so one bad method can never abort a ticker's batch. The
// orchestrator treats a panic escaping Analyze as a bug class distinct from
// a reported failure and recovers it at the dispatch boundary.
type Analyzer interface {
	Type() core.AnalysisType
	Analyze(ctx context.Context, ticker string, actx *Context) core.AnalyzerResult
	Applicable(companyType core.CompanyType) bool
}

// ParseLabel normalizes a free-form recommendation string from an LLM or
// external feed to a known label.
func ParseLabel(s string) (core.RecommendationLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strong buy", "strong_buy":
		return core.StrongBuy, true
	case "buy":
		return core.Buy, true
	case "speculative buy", "speculative_buy":
		return core.SpeculativeBuy, true
	case "hold":
		return core.Hold, true
	case "monitor":
		return core.Monitor, true
	case "sell":
		return core.Sell, true
	case "strong sell", "strong_sell":
		return core.StrongSell, true
	}
	return "", false
}

// ParseConfidence normalizes a free-form confidence string.
func ParseConfidence(s string) core.Confidence {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return core.ConfidenceHigh
	case "low":
		return core.ConfidenceLow
	default:
		return core.ConfidenceMedium
	}
}

// ExtractJSON pulls the first JSON object out of an LLM reply, tolerating
// markdown fences and surrounding prose.
func ExtractJSON(content string) (json.RawMessage, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	raw := json.RawMessage(content[start : end+1])
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}
