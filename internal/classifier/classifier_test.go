package classifier

import (
	"testing"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
)

func newTestClassifier() *Classifier {
	return New(config.Defaults().Classifier, nil)
}

func metrics(mutate func(*core.FinancialMetrics)) *core.FinancialMetrics {
	m := &core.FinancialMetrics{
		Ticker:              "TEST",
		Sector:              "Technology",
		Industry:            "Software",
		MarketCap:           10e9,
		NetIncome:           1e9,
		FreeCashFlow:        8e8,
		YearlyRevenueGrowth: 0.05,
	}
	if mutate != nil {
		mutate(m)
	}
	return m
}

func TestClassify_ETFPriority(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name   string
		ticker string
		mutate func(*core.FinancialMetrics)
	}{
		{"quote type", "XYZ", func(m *core.FinancialMetrics) { m.QuoteType = "ETF" }},
		{"name contains ETF", "XYZ", func(m *core.FinancialMetrics) { m.LongName = "Some Sector ETF" }},
		{"name contains TRUST", "XYZ", func(m *core.FinancialMetrics) { m.LongName = "Spider Trust Shares" }},
		{"fund family set", "XYZ", func(m *core.FinancialMetrics) { m.FundFamily = "Vanguard" }},
		{"known ticker", "SPY", nil},
		{"ticker suffix", "GLDETF", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics(tt.mutate)
			// ETF detection must win even over loss-making fields.
			m.NetIncome = -1e8
			m.FreeCashFlow = -1e8
			if got := c.Classify(tt.ticker, m); got != core.CompanyETF {
				t.Errorf("expected etf, got %s", got)
			}
		})
	}
}

func TestClassify_SectorTables(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		sector   string
		industry string
		want     core.CompanyType
	}{
		{"Real Estate", "Diversified", core.CompanyREIT},
		{"Equity", "REIT - Retail", core.CompanyREIT},
		{"Financial Services", "Insurance", core.CompanyFinancial},
		{"Diversified", "Banks - Regional", core.CompanyFinancial},
		{"Basic Materials", "Chemicals", core.CompanyCommodity},
		{"Diversified", "Gold Mining", core.CompanyCommodity},
	}

	for _, tt := range tests {
		m := metrics(func(m *core.FinancialMetrics) {
			m.Sector = tt.sector
			m.Industry = tt.industry
		})
		if got := c.Classify("TEST", m); got != tt.want {
			t.Errorf("sector=%q industry=%q: expected %s, got %s", tt.sector, tt.industry, tt.want, got)
		}
	}
}

func TestClassify_StartupVsTurnaround(t *testing.T) {
	c := newTestClassifier()

	// Both negative + below startup cap -> startup.
	m := metrics(func(m *core.FinancialMetrics) {
		m.NetIncome = -1e8
		m.FreeCashFlow = -5e7
		m.MarketCap = 2e9
	})
	if got := c.Classify("TEST", m); got != core.CompanyStartupLossMaking {
		t.Errorf("expected startup_loss_making, got %s", got)
	}

	// Same losses but above the cap -> turnaround.
	m.MarketCap = 8e9
	if got := c.Classify("TEST", m); got != core.CompanyTurnaround {
		t.Errorf("expected turnaround, got %s", got)
	}

	// Only one leg negative -> turnaround regardless of cap.
	m = metrics(func(m *core.FinancialMetrics) {
		m.NetIncome = -1e8
		m.MarketCap = 2e9
	})
	if got := c.Classify("TEST", m); got != core.CompanyTurnaround {
		t.Errorf("expected turnaround, got %s", got)
	}
}

func TestClassify_CyclicalMatureGrowth(t *testing.T) {
	c := newTestClassifier()

	m := metrics(func(m *core.FinancialMetrics) {
		m.Sector = "Industrials"
		m.YearlyRevenueGrowth = 0.03
	})
	if got := c.Classify("TEST", m); got != core.CompanyCyclical {
		t.Errorf("expected cyclical, got %s", got)
	}

	m = metrics(func(m *core.FinancialMetrics) {
		m.MarketCap = 100e9
		m.YearlyRevenueGrowth = 0.04
	})
	if got := c.Classify("TEST", m); got != core.CompanyMatureProfitable {
		t.Errorf("expected mature_profitable, got %s", got)
	}

	m = metrics(func(m *core.FinancialMetrics) {
		m.YearlyRevenueGrowth = 0.25
	})
	if got := c.Classify("TEST", m); got != core.CompanyGrowthProfitable {
		t.Errorf("expected growth_profitable, got %s", got)
	}
}

func TestClassify_FailsClosed(t *testing.T) {
	c := newTestClassifier()

	if got := c.Classify("TEST", nil); got != core.CompanyMatureProfitable {
		t.Errorf("expected default on nil metrics, got %s", got)
	}

	// Empty metrics fall through every rule to the default.
	if got := c.Classify("TEST", &core.FinancialMetrics{NetIncome: 1, FreeCashFlow: 1}); got != core.CompanyMatureProfitable {
		t.Errorf("expected default on empty metrics, got %s", got)
	}
}
