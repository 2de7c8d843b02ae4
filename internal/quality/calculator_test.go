package quality

import (
	"testing"

	"github.com/newthinker/insight/internal/core"
)

func allPresent() map[string]bool {
	return map[string]bool{
		"roe":                   true,
		"debt_to_equity":        true,
		"current_ratio":         true,
		"yearly_revenue_growth": true,
		"earnings_growth":       true,
		"pe_ratio":              true,
		"pb_ratio":              true,
	}
}

func TestCalculate_StrongCompany(t *testing.T) {
	c := NewCalculator()

	qs := c.Calculate(&core.FinancialMetrics{
		ROE:                 0.22,
		NetIncome:           5e9,
		DebtToEquity:        0.2,
		CurrentRatio:        2.5,
		YearlyRevenueGrowth: 0.25,
		EarningsGrowth:      0.20,
		PERatio:             18,
		PBRatio:             2.2,
		Present:             allPresent(),
	})

	if qs.Score != 100 {
		t.Errorf("expected score 100, got %d", qs.Score)
	}
	if qs.Grade != "A" {
		t.Errorf("expected grade A, got %s", qs.Grade)
	}
	if qs.DataQuality != "High" {
		t.Errorf("expected High data quality, got %s", qs.DataQuality)
	}
	if qs.MissingPenalty != 0 {
		t.Errorf("expected no penalty, got %d", qs.MissingPenalty)
	}
}

func TestCalculate_MissingDataPenalty(t *testing.T) {
	c := NewCalculator()

	// No Present map at all: every field counts as missing.
	qs := c.Calculate(&core.FinancialMetrics{NetIncome: 1e9})

	if qs.MissingPenalty != 12 {
		t.Errorf("expected penalty 12, got %d", qs.MissingPenalty)
	}
	if qs.DataQuality != "Low" {
		t.Errorf("expected Low data quality, got %s", qs.DataQuality)
	}
	// 10 points for positive net income minus the penalty.
	if qs.Score != 0 {
		t.Errorf("expected floored score 0, got %d", qs.Score)
	}
	if qs.Grade != "D" {
		t.Errorf("expected grade D, got %s", qs.Grade)
	}
}

func TestCalculate_Grades(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{85, "A"}, {80, "A"}, {65, "B"}, {60, "B"}, {45, "C"}, {40, "C"}, {30, "D"}, {0, "D"},
	}
	for _, tt := range tests {
		if got := grade(tt.score); got != tt.want {
			t.Errorf("grade(%d): expected %s, got %s", tt.score, tt.want, got)
		}
	}
}

func TestCalculate_NilMetrics(t *testing.T) {
	qs := NewCalculator().Calculate(nil)
	if qs.Grade != "D" || qs.DataQuality != "Low" {
		t.Errorf("nil metrics must score worst case, got %+v", qs)
	}
}
