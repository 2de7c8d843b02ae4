package analystconsensus

import (
	"context"
	"errors"
	"testing"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
)

type fakeSource struct {
	data *core.AnalystData
	err  error
}

func (f *fakeSource) AnalystData(context.Context, string) (*core.AnalystData, error) {
	return f.data, f.err
}

func TestAnalyzeWellCovered(t *testing.T) {
	src := &fakeSource{data: &core.AnalystData{
		TargetPrice:        180,
		TargetHigh:         220,
		TargetLow:          150,
		RecommendationMean: 1.8,
		AnalystCount:       25,
	}}
	a := New(src, nil)

	res := a.Analyze(context.Background(), "AAPL", &analyzer.Context{CurrentPrice: 150})
	if !res.OK() {
		t.Fatalf("expected success, got %+v", res.Err)
	}
	if res.Recommendation != core.Buy {
		t.Errorf("mean 1.8 should map to Buy, got %s", res.Recommendation)
	}
	if res.Confidence != core.ConfidenceHigh {
		t.Errorf("25 analysts should give High confidence, got %s", res.Confidence)
	}
	if res.PredictedPrice == nil || *res.PredictedPrice != 180 {
		t.Errorf("expected target 180, got %v", res.PredictedPrice)
	}
	upside, _ := res.Detail("upside_downside_pct").(float64)
	if upside < 19.9 || upside > 20.1 {
		t.Errorf("expected 20%% upside, got %v", upside)
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	a := New(&fakeSource{err: errors.New("rate limited")}, nil)

	res := a.Analyze(context.Background(), "AAPL", &analyzer.Context{})
	if res.Err == nil || res.Err.Kind != core.ErrKindDataUnavailable {
		t.Fatalf("expected data_unavailable, got %+v", res.Err)
	}
}

func TestAnalyzeNoCoverage(t *testing.T) {
	a := New(&fakeSource{data: &core.AnalystData{}}, nil)

	res := a.Analyze(context.Background(), "TINY", &analyzer.Context{})
	if res.Err == nil || res.Err.Kind != core.ErrKindDataUnavailable {
		t.Fatalf("expected data_unavailable for zero coverage, got %+v", res.Err)
	}
}

func TestLabelFromMean(t *testing.T) {
	cases := []struct {
		mean float64
		want core.RecommendationLabel
	}{
		{1.0, core.StrongBuy},
		{2.0, core.Buy},
		{3.0, core.Hold},
		{4.0, core.Sell},
		{5.0, core.StrongSell},
		{0, core.Hold},
	}
	for _, c := range cases {
		if got := labelFromMean(c.mean); got != c.want {
			t.Errorf("labelFromMean(%v) = %s, want %s", c.mean, got, c.want)
		}
	}
}
