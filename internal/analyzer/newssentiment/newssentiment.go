// Package newssentiment scores recent headlines for a ticker. An LLM scores
// the batch when one is reachable; a keyword lexicon covers the offline path.
package newssentiment

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

const systemPrompt = `You score financial news sentiment. Respond with a single JSON object and nothing else.`

// Source is the slice of the data provider this analyzer needs.
type Source interface {
	News(ctx context.Context, ticker string, days int) ([]core.NewsItem, error)
}

// Analyzer aggregates per-headline sentiment into an overall score in
// [-1, 1] and maps it to a stance.
type Analyzer struct {
	source       Source
	llm          llm.Provider
	lookbackDays int
	logger       *zap.Logger
}

func New(source Source, provider llm.Provider, logger *zap.Logger) *Analyzer {
	return &Analyzer{source: source, llm: provider, lookbackDays: 14, logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisNewsSentiment }

func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(ctx context.Context, ticker string, _ *analyzer.Context) core.AnalyzerResult {
	items, err := a.source.News(ctx, ticker, a.lookbackDays)
	if err != nil {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable,
			fmt.Sprintf("news fetch failed: %v", err))
	}
	if len(items) == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "no recent news")
	}

	scores, method := a.scoreHeadlines(ctx, items)

	var sum float64
	for _, s := range scores {
		sum += s
	}
	overall := sum / float64(len(scores))

	headlines := make([]map[string]any, 0, len(items))
	for i, item := range items {
		headlines = append(headlines, map[string]any{
			"title":           item.Title,
			"publisher":       item.Publisher,
			"sentiment_score": scores[i],
		})
	}

	if a.logger != nil {
		a.logger.Debug("news sentiment",
			zap.String("ticker", ticker),
			zap.Float64("overall", overall),
			zap.Int("articles", len(items)))
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: labelForScore(overall),
		Confidence:     confidenceForCount(len(items)),
		Details: map[string]any{
			"overall_sentiment_score": overall,
			"sentiment_rating":        rating(overall),
			"articles_analyzed":       len(items),
			"headlines":               headlines,
			"scoring_method":          method,
		},
	}
}

// scoreHeadlines returns one score per item, in item order.
func (a *Analyzer) scoreHeadlines(ctx context.Context, items []core.NewsItem) ([]float64, string) {
	if a.llm != nil {
		if scores, err := a.scoreWithLLM(ctx, items); err == nil {
			return scores, "llm"
		} else if a.logger != nil {
			a.logger.Debug("llm sentiment scoring failed, using lexicon", zap.Error(err))
		}
	}

	scores := make([]float64, len(items))
	for i, item := range items {
		scores[i] = lexiconScore(item.Title)
	}
	return scores, "lexicon"
}

func (a *Analyzer) scoreWithLLM(ctx context.Context, items []core.NewsItem) ([]float64, error) {
	var sb strings.Builder
	sb.WriteString("Score each headline's sentiment for the stock from -1.0 (very negative) to 1.0 (very positive).\n\n")
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item.Title)
	}
	sb.WriteString("\nRespond with JSON: {\"scores\": [<one number per headline, in order>]}")

	resp, err := a.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: sb.String()}},
		MaxTokens:    512,
		Temperature:  0,
		JSONMode:     true,
	})
	if err != nil {
		return nil, err
	}

	var reply struct {
		Scores []float64 `json:"scores"`
	}
	raw, ok := analyzer.ExtractJSON(resp.Content)
	if !ok {
		return nil, fmt.Errorf("unparseable llm reply")
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("decoding scores: %w", err)
	}
	if len(reply.Scores) != len(items) {
		return nil, fmt.Errorf("got %d scores for %d headlines", len(reply.Scores), len(items))
	}
	for i, s := range reply.Scores {
		if s > 1 {
			reply.Scores[i] = 1
		} else if s < -1 {
			reply.Scores[i] = -1
		}
	}
	return reply.Scores, nil
}

var positiveWords = []string{
	"beat", "beats", "surge", "soar", "record", "upgrade", "upgraded",
	"growth", "profit", "strong", "raise", "raises", "rally", "buyback",
	"outperform", "wins", "approval", "expands",
}

var negativeWords = []string{
	"miss", "misses", "plunge", "fall", "falls", "drop", "downgrade",
	"downgraded", "loss", "losses", "weak", "cut", "cuts", "lawsuit",
	"probe", "recall", "layoff", "layoffs", "bankruptcy", "warns",
}

// lexiconScore is the crude offline fallback: net keyword hits scaled into
// [-1, 1].
func lexiconScore(title string) float64 {
	lower := strings.ToLower(title)
	var score float64
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 0.4
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 0.4
		}
	}
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

func labelForScore(score float64) core.RecommendationLabel {
	switch {
	case score >= 0.4:
		return core.Buy
	case score <= -0.4:
		return core.Sell
	case score <= -0.15:
		return core.Monitor
	default:
		return core.Hold
	}
}

func rating(score float64) string {
	switch {
	case score >= 0.4:
		return "Positive"
	case score >= 0.15:
		return "Slightly Positive"
	case score <= -0.4:
		return "Negative"
	case score <= -0.15:
		return "Slightly Negative"
	default:
		return "Neutral"
	}
}

func confidenceForCount(n int) core.Confidence {
	switch {
	case n >= 10:
		return core.ConfidenceHigh
	case n >= 4:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}
