// Package recommendation consolidates per-method analyzer results into a
// single weighted-consensus recommendation for a ticker.
package recommendation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// scoreMap converts labels to a bull/bear axis. Speculative Buy counts as a
// regular Buy and Monitor as a Hold; the nuance lives in confidence, not in
// the consensus direction.
var scoreMap = map[core.RecommendationLabel]float64{
	core.StrongBuy:      2,
	core.Buy:            1,
	core.SpeculativeBuy: 1,
	core.Hold:           0,
	core.Monitor:        0,
	core.Sell:           -1,
	core.StrongSell:     -2,
}

// Service computes the weighted consensus. Stateless; safe for concurrent
// use.
type Service struct {
	weights       map[string]float64
	defaultWeight float64
	logger        *zap.Logger
}

func NewService(cfg config.RecommendationConfig, logger *zap.Logger) *Service {
	return &Service{
		weights:       cfg.Weights,
		defaultWeight: cfg.DefaultWeight,
		logger:        logger,
	}
}

func (s *Service) weight(t core.AnalysisType) float64 {
	if w, ok := s.weights[string(t)]; ok {
		return w
	}
	return s.defaultWeight
}

// Consolidate folds successful analyzer results into the consensus value
// object. Error and not-applicable entries contribute nothing to either the
// numerator or the denominator.
func (s *Service) Consolidate(analyses map[core.AnalysisType]core.AnalyzerResult) core.ConsolidatedRecommendation {
	individual := make(map[core.AnalysisType]core.RecommendationLabel)
	targets := make(map[core.AnalysisType]float64)

	for t, r := range analyses {
		if !r.OK() {
			continue
		}
		if r.Recommendation != "" {
			individual[t] = r.Recommendation
		}
		if r.PredictedPrice != nil && *r.PredictedPrice > 0 {
			targets[t] = *r.PredictedPrice
		}
	}

	score := s.consensusScore(individual)

	return core.ConsolidatedRecommendation{
		FinalRecommendation: labelForScore(score),
		ConfidenceLevel:     confidence(score, len(individual)),
		ConsensusScore:      score,
		Individual:          individual,
		PriceTargets:        targets,
	}
}

// Generate builds the public recommendation from the consolidated view and
// the full analysis set.
func (s *Service) Generate(ticker string, analyses map[core.AnalysisType]core.AnalyzerResult) *core.Recommendation {
	consolidated := s.Consolidate(analyses)

	rec := &core.Recommendation{
		Ticker:         ticker,
		Recommendation: consolidated.FinalRecommendation,
		Confidence:     consolidated.ConfidenceLevel,
		ConsensusScore: consolidated.ConsensusScore,
		RiskLevel:      riskLevel(analyses),
		BullishSignals: bullishSignals(analyses),
		BearishSignals: bearishSignals(analyses),
		KeyRisks:       keyRisks(analyses),
		Summary:        summary(consolidated),
	}

	if target, ok := s.targetPrice(consolidated.PriceTargets); ok {
		rec.TargetPrice = &target
		if current, ok := currentPrice(analyses); ok && current > 0 {
			upside := (target - current) / current * 100
			rec.UpsidePotential = &upside
		}
	}

	if s.logger != nil {
		s.logger.Debug("consolidated recommendation",
			zap.String("ticker", ticker),
			zap.String("recommendation", string(rec.Recommendation)),
			zap.Float64("consensus_score", rec.ConsensusScore))
	}
	return rec
}

func (s *Service) consensusScore(individual map[core.AnalysisType]core.RecommendationLabel) float64 {
	var weighted, total float64
	for t, label := range individual {
		w := s.weight(t)
		weighted += scoreMap[label] * w
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// targetPrice is the weight-averaged predicted price across methods that
// produced one.
func (s *Service) targetPrice(targets map[core.AnalysisType]float64) (float64, bool) {
	if len(targets) == 0 {
		return 0, false
	}
	var weighted, total float64
	for t, price := range targets {
		w := s.weight(t)
		weighted += price * w
		total += w
	}
	return weighted / total, true
}

func labelForScore(score float64) core.RecommendationLabel {
	switch {
	case score >= 1.5:
		return core.StrongBuy
	case score >= 0.5:
		return core.Buy
	case score <= -1.5:
		return core.StrongSell
	case score <= -0.5:
		return core.Sell
	default:
		return core.Hold
	}
}

func confidence(score float64, methods int) core.Confidence {
	strength := score
	if strength < 0 {
		strength = -strength
	}
	switch {
	case methods >= 3 && strength >= 1.0:
		return core.ConfidenceHigh
	case methods >= 2 && strength >= 0.5:
		return core.ConfidenceMedium
	default:
		return core.ConfidenceLow
	}
}

func currentPrice(analyses map[core.AnalysisType]core.AnalyzerResult) (float64, bool) {
	for _, r := range analyses {
		if r.OK() && r.CurrentPrice != nil && *r.CurrentPrice > 0 {
			return *r.CurrentPrice, true
		}
	}
	return 0, false
}

func riskLevel(analyses map[core.AnalysisType]core.AnalyzerResult) string {
	highRisk := 0
	total := 0
	for t, r := range analyses {
		if !r.OK() {
			continue
		}
		total++
		if r.Confidence == core.ConfidenceLow {
			highRisk++
		}
		if t == core.AnalysisTechnical {
			if vol, ok := r.Detail("volatility_annual").(float64); ok && vol > 0.5 {
				highRisk++
			}
		}
	}
	switch {
	case total > 0 && float64(highRisk) >= float64(total)*0.5:
		return "High"
	case highRisk > 0:
		return "Medium"
	default:
		return "Low"
	}
}

func bullishSignals(analyses map[core.AnalysisType]core.AnalyzerResult) []string {
	var signals []string
	for _, t := range sortedTypes(analyses) {
		r := analyses[t]
		if !r.OK() {
			continue
		}
		switch r.Recommendation {
		case core.StrongBuy, core.Buy, core.SpeculativeBuy:
			signals = append(signals, fmt.Sprintf("%s indicates %s", strings.ToUpper(string(t)), r.Recommendation))
		}
		if t == core.AnalysisTechnical {
			if trend, ok := r.Detail("trend").(string); ok && strings.Contains(trend, "Uptrend") {
				signals = append(signals, "Technical: "+trend)
			}
		}
	}
	return signals
}

func bearishSignals(analyses map[core.AnalysisType]core.AnalyzerResult) []string {
	var signals []string
	for _, t := range sortedTypes(analyses) {
		r := analyses[t]
		if !r.OK() {
			continue
		}
		switch r.Recommendation {
		case core.StrongSell, core.Sell:
			signals = append(signals, fmt.Sprintf("%s indicates %s", strings.ToUpper(string(t)), r.Recommendation))
		}
		if v, ok := r.Detail("valuation").(string); ok && v == "Overvalued" {
			signals = append(signals, strings.ToUpper(string(t))+": Overvalued")
		}
	}
	return signals
}

func keyRisks(analyses map[core.AnalysisType]core.AnalyzerResult) []string {
	var risks []string
	for _, t := range sortedTypes(analyses) {
		r := analyses[t]
		if !r.OK() {
			continue
		}
		if r.Confidence == core.ConfidenceLow {
			risks = append(risks, fmt.Sprintf("Low confidence in %s analysis", t))
		}
		if t == core.AnalysisTechnical {
			if vol, ok := r.Detail("volatility_annual").(float64); ok && vol > 0.5 {
				risks = append(risks, "High volatility")
			}
		}
	}
	return risks
}

func summary(c core.ConsolidatedRecommendation) string {
	parts := []string{
		fmt.Sprintf("Consensus: %s", c.FinalRecommendation),
		fmt.Sprintf("Confidence: %s", c.ConfidenceLevel),
		fmt.Sprintf("Analyses: %d", len(c.Individual)),
	}
	types := make([]core.AnalysisType, 0, len(c.Individual))
	for t := range c.Individual {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ToUpper(string(t)), c.Individual[t]))
	}
	return strings.Join(parts, " | ")
}

func sortedTypes(analyses map[core.AnalysisType]core.AnalyzerResult) []core.AnalysisType {
	types := make([]core.AnalysisType, 0, len(analyses))
	for t := range analyses {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
