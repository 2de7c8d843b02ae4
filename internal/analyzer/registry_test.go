package analyzer

import (
	"context"
	"testing"

	"github.com/newthinker/insight/internal/core"
)

type stubAnalyzer struct {
	typ core.AnalysisType
}

func (s *stubAnalyzer) Type() core.AnalysisType { return s.typ }

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, _ *Context) core.AnalyzerResult {
	return core.AnalyzerResult{Type: s.typ, Applicable: true, Recommendation: core.Hold}
}

func (s *stubAnalyzer) Applicable(core.CompanyType) bool { return true }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubAnalyzer{typ: core.AnalysisDCF})
	r.Register(&stubAnalyzer{typ: core.AnalysisTechnical})

	if r.Len() != 2 {
		t.Fatalf("expected 2 analyzers, got %d", r.Len())
	}

	a, ok := r.Get(string(core.AnalysisDCF))
	if !ok {
		t.Fatal("dcf analyzer not found")
	}
	if a.Type() != core.AnalysisDCF {
		t.Errorf("wrong analyzer: %s", a.Type())
	}

	if _, ok := r.Get("unknown"); ok {
		t.Error("expected miss for unregistered type")
	}

	if len(r.All()) != 2 {
		t.Errorf("All returned %d analyzers", len(r.All()))
	}
}

func TestRegistryReRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	first := &stubAnalyzer{typ: core.AnalysisDCF}
	second := &stubAnalyzer{typ: core.AnalysisDCF}
	r.Register(first)
	r.Register(second)

	if r.Len() != 1 {
		t.Fatalf("expected 1 analyzer after re-register, got %d", r.Len())
	}
	got, _ := r.Get(string(core.AnalysisDCF))
	if got != second {
		t.Error("re-register did not replace the instance")
	}
}

func TestParseLabel(t *testing.T) {
	cases := map[string]core.RecommendationLabel{
		"Strong Buy":      core.StrongBuy,
		"strong_buy":      core.StrongBuy,
		"  buy  ":         core.Buy,
		"HOLD":            core.Hold,
		"speculative buy": core.SpeculativeBuy,
		"monitor":         core.Monitor,
		"sell":            core.Sell,
		"STRONG SELL":     core.StrongSell,
	}
	for in, want := range cases {
		got, ok := ParseLabel(in)
		if !ok || got != want {
			t.Errorf("ParseLabel(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseLabel("yolo"); ok {
		t.Error("expected parse failure for unknown label")
	}
}

func TestExtractJSON(t *testing.T) {
	raw, ok := ExtractJSON("Here you go:\n```json\n{\"recommendation\": \"Buy\"}\n```\nenjoy")
	if !ok {
		t.Fatal("expected JSON extraction to succeed")
	}
	if string(raw) != `{"recommendation": "Buy"}` {
		t.Errorf("unexpected extraction: %s", raw)
	}

	if _, ok := ExtractJSON("no json here"); ok {
		t.Error("expected failure with no braces")
	}
	if _, ok := ExtractJSON("{not valid json]"); ok {
		t.Error("expected failure for invalid json")
	}
}
