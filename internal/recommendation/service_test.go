package recommendation

import (
	"math"
	"testing"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
)

func newService() *Service {
	return NewService(config.Defaults().Recommendation, nil)
}

func ok(t core.AnalysisType, label core.RecommendationLabel, target float64) core.AnalyzerResult {
	r := core.AnalyzerResult{Type: t, Applicable: true, Recommendation: label, Confidence: core.ConfidenceMedium}
	if target > 0 {
		r.PredictedPrice = &target
	}
	return r
}

func TestConsolidateUnanimousStrongBuy(t *testing.T) {
	s := newService()
	analyses := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisDCF:        ok(core.AnalysisDCF, core.StrongBuy, 0),
		core.AnalysisTechnical:  ok(core.AnalysisTechnical, core.StrongBuy, 0),
		core.AnalysisComparable: ok(core.AnalysisComparable, core.StrongBuy, 0),
	}

	c := s.Consolidate(analyses)
	// Every method scores +2; any weighting normalizes to exactly 2.0.
	if c.ConsensusScore != 2.0 {
		t.Errorf("unanimous strong buy should score exactly 2.0, got %f", c.ConsensusScore)
	}
	if c.FinalRecommendation != core.StrongBuy {
		t.Errorf("expected Strong Buy, got %s", c.FinalRecommendation)
	}
	if c.ConfidenceLevel != core.ConfidenceHigh {
		t.Errorf("3 agreeing methods should be High confidence, got %s", c.ConfidenceLevel)
	}
}

func TestConsolidateExcludesErrorsAndNotApplicable(t *testing.T) {
	s := newService()
	analyses := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisDCF:        ok(core.AnalysisDCF, core.Buy, 150),
		core.AnalysisTechnical:  ok(core.AnalysisTechnical, core.Hold, 140),
		core.AnalysisComparable: core.AnalyzerFailure(core.AnalysisComparable, core.ErrKindComputationFailed, "boom"),
		core.AnalysisStartup:    core.NotApplicable(core.AnalysisStartup, core.CompanyMatureProfitable),
	}

	c := s.Consolidate(analyses)
	if len(c.Individual) != 2 {
		t.Fatalf("expected 2 contributing methods, got %d", len(c.Individual))
	}
	if _, present := c.Individual[core.AnalysisComparable]; present {
		t.Error("errored method must not contribute")
	}

	// dcf=0.25 weight, technical=0.15: (1*0.25 + 0*0.15) / 0.40 = 0.625.
	want := 0.625
	if math.Abs(c.ConsensusScore-want) > 1e-9 {
		t.Errorf("expected consensus %f, got %f", want, c.ConsensusScore)
	}
	if c.FinalRecommendation != core.Buy {
		t.Errorf("expected Buy, got %s", c.FinalRecommendation)
	}

	// Target: (150*0.25 + 140*0.15) / 0.40 = 146.25.
	if target, present := c.PriceTargets[core.AnalysisDCF]; !present || target != 150 {
		t.Errorf("expected dcf target 150, got %v", target)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	s := newService()
	cp := 130.0
	dcf := ok(core.AnalysisDCF, core.Buy, 150)
	dcf.CurrentPrice = &cp
	analyses := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisDCF:        dcf,
		core.AnalysisTechnical:  ok(core.AnalysisTechnical, core.Hold, 140),
		core.AnalysisComparable: core.AnalyzerFailure(core.AnalysisComparable, core.ErrKindTimeout, "slow"),
	}

	rec := s.Generate("ACME", analyses)
	if rec.Recommendation != core.Buy {
		t.Errorf("expected Buy, got %s", rec.Recommendation)
	}
	if rec.TargetPrice == nil {
		t.Fatal("expected a consensus target price")
	}
	want := (150*0.25 + 140*0.15) / 0.40
	if math.Abs(*rec.TargetPrice-want) > 1e-9 {
		t.Errorf("expected target %f, got %f", want, *rec.TargetPrice)
	}
	if rec.UpsidePotential == nil {
		t.Fatal("expected upside potential with a current price available")
	}
	wantUpside := (want - 130) / 130 * 100
	if math.Abs(*rec.UpsidePotential-wantUpside) > 1e-9 {
		t.Errorf("expected upside %f, got %f", wantUpside, *rec.UpsidePotential)
	}
	if len(rec.BullishSignals) == 0 {
		t.Error("Buy from dcf should register a bullish signal")
	}
	if rec.Summary == "" {
		t.Error("expected a summary line")
	}
}

func TestConsensusScoreEmptyInput(t *testing.T) {
	s := newService()
	c := s.Consolidate(map[core.AnalysisType]core.AnalyzerResult{})
	if c.ConsensusScore != 0 {
		t.Errorf("empty input should score 0, got %f", c.ConsensusScore)
	}
	if c.FinalRecommendation != core.Hold {
		t.Errorf("empty input should Hold, got %s", c.FinalRecommendation)
	}
	if c.ConfidenceLevel != core.ConfidenceLow {
		t.Errorf("empty input should be Low confidence, got %s", c.ConfidenceLevel)
	}
}

func TestSpeculativeBuyAndMonitorScoring(t *testing.T) {
	s := newService()
	analyses := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisStartup:       ok(core.AnalysisStartup, core.SpeculativeBuy, 0),
		core.AnalysisNewsSentiment: ok(core.AnalysisNewsSentiment, core.Monitor, 0),
	}

	c := s.Consolidate(analyses)
	// startup=0.4, news default=0.1: (1*0.4 + 0*0.1) / 0.5 = 0.8.
	if math.Abs(c.ConsensusScore-0.8) > 1e-9 {
		t.Errorf("expected 0.8, got %f", c.ConsensusScore)
	}
	if c.FinalRecommendation != core.Buy {
		t.Errorf("expected Buy, got %s", c.FinalRecommendation)
	}
}

func TestRiskLevel(t *testing.T) {
	vol := func(v float64) core.AnalyzerResult {
		r := ok(core.AnalysisTechnical, core.Hold, 0)
		r.Details = map[string]any{"volatility_annual": v}
		return r
	}

	high := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisTechnical: vol(0.8),
	}
	if got := riskLevel(high); got != "High" {
		t.Errorf("volatile lone method should be High risk, got %s", got)
	}

	low := map[core.AnalysisType]core.AnalyzerResult{
		core.AnalysisDCF:       ok(core.AnalysisDCF, core.Buy, 0),
		core.AnalysisTechnical: vol(0.2),
	}
	if got := riskLevel(low); got != "Low" {
		t.Errorf("calm results should be Low risk, got %s", got)
	}
}
