// Package classifier maps a ticker's fundamental metrics to a company type.
// Classification is a pure function of the metrics bag, evaluated as ordered
// rules where the first match wins. It fails closed: unexpected input shapes
// produce the mature_profitable default instead of an error.
package classifier

import (
	"strings"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Classifier applies the ordered company-type rules.
type Classifier struct {
	cfg    config.ClassifierConfig
	logger *zap.Logger
}

// New creates a classifier with injected thresholds and sector tables.
func New(cfg config.ClassifierConfig, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{cfg: cfg, logger: logger}
}

// Classify returns the company type for the given metrics. A nil metrics bag
// is an unanticipated shape and yields the default type.
func (c *Classifier) Classify(ticker string, m *core.FinancialMetrics) core.CompanyType {
	if m == nil {
		c.logger.Warn("classification failed, using default type",
			zap.String("ticker", ticker),
			zap.String("reason", "nil metrics"),
		)
		return core.CompanyMatureProfitable
	}

	// Rule 1: ETF detection wins over everything else.
	if c.isETF(ticker, m) {
		return core.CompanyETF
	}

	// Rules 2-4: sector/industry table matches.
	if matchTables(m.Sector, m.Industry, c.cfg.REITSectors, c.cfg.REITIndustries) {
		return core.CompanyREIT
	}
	if matchTables(m.Sector, m.Industry, c.cfg.FinancialSectors, c.cfg.FinancialIndustries) {
		return core.CompanyFinancial
	}
	if matchTables(m.Sector, m.Industry, c.cfg.CommoditySectors, c.cfg.CommodityIndustries) {
		return core.CompanyCommodity
	}

	// Rules 5-6: loss-making splits on market cap.
	if m.NetIncome <= 0 && m.FreeCashFlow <= 0 && m.MarketCap < c.cfg.StartupMarketCap {
		return core.CompanyStartupLossMaking
	}
	if m.NetIncome <= 0 || m.FreeCashFlow <= 0 {
		return core.CompanyTurnaround
	}

	// Rule 7: cyclical sectors without growth momentum.
	if containsFold(c.cfg.CyclicalSectors, m.Sector) && m.YearlyRevenueGrowth <= c.cfg.CyclicalGrowthCap {
		return core.CompanyCyclical
	}

	// Rules 8-9: size vs growth.
	if m.MarketCap > c.cfg.MatureMarketCap && m.YearlyRevenueGrowth < c.cfg.GrowthThreshold {
		return core.CompanyMatureProfitable
	}
	if m.YearlyRevenueGrowth >= c.cfg.GrowthThreshold {
		return core.CompanyGrowthProfitable
	}

	return core.CompanyMatureProfitable
}

// isETF checks the ETF indicator set. Any single indicator is enough.
func (c *Classifier) isETF(ticker string, m *core.FinancialMetrics) bool {
	name := strings.ToUpper(m.LongName)

	switch {
	case m.QuoteType == "ETF":
		return true
	case strings.Contains(name, "ETF"),
		strings.Contains(name, "FUND"),
		strings.Contains(name, "TRUST"):
		return true
	case m.FundFamily != "" || m.Category != "":
		return true
	case strings.HasSuffix(strings.ToUpper(ticker), "ETF"):
		return true
	}

	for _, known := range c.cfg.ETFTickers {
		if strings.EqualFold(ticker, known) {
			return true
		}
	}

	// Funds report no revenue of their own.
	if m.QuoteType != "" && m.Has("total_revenue") && m.TotalRevenue == 0 {
		return true
	}

	return false
}

func matchTables(sector, industry string, sectors, industries []string) bool {
	for _, s := range sectors {
		if strings.Contains(sector, s) {
			return true
		}
	}
	for _, i := range industries {
		if strings.Contains(industry, i) {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
