package provider

import (
	"context"

	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/provider/edgar"
	"go.uber.org/zap"
)

// Composite wraps a primary provider and backfills missing fundamentals from
// SEC EDGAR filings. EDGAR failures are never fatal: the primary metrics bag
// is returned as-is when enrichment is unavailable.
type Composite struct {
	primary DataProvider
	edgar   *edgar.Client
	logger  *zap.Logger
}

// NewComposite creates the enriching provider. A nil edgar client disables
// enrichment entirely.
func NewComposite(primary DataProvider, e *edgar.Client, logger *zap.Logger) *Composite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composite{primary: primary, edgar: e, logger: logger}
}

func (c *Composite) Name() string { return c.primary.Name() + "+edgar" }

// FinancialMetrics fetches from the primary and backfills absent fields.
func (c *Composite) FinancialMetrics(ctx context.Context, ticker string) (*core.FinancialMetrics, error) {
	m, err := c.primary.FinancialMetrics(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if c.edgar == nil || m.QuoteType == "ETF" {
		return m, nil
	}

	needsIncome := !m.Has("net_income")
	needsRevenue := !m.Has("total_revenue")
	needsFCF := !m.Has("free_cash_flow")
	if !needsIncome && !needsRevenue && !needsFCF {
		return m, nil
	}

	facts, err := c.edgar.CompanyFacts(ctx, ticker)
	if err != nil {
		c.logger.Debug("edgar enrichment unavailable",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		return m, nil
	}

	if m.Present == nil {
		m.Present = make(map[string]bool)
	}
	if needsIncome && facts.HasNetIncome {
		m.NetIncome = facts.NetIncome
		m.Present["net_income"] = true
	}
	if needsRevenue && facts.HasRevenue {
		m.TotalRevenue = facts.Revenue
		m.Present["total_revenue"] = true
	}
	if needsFCF {
		if fcf, ok := facts.FreeCashFlow(); ok {
			m.FreeCashFlow = fcf
			m.Present["free_cash_flow"] = true
		}
	}

	return m, nil
}

func (c *Composite) PriceData(ctx context.Context, ticker string) (*core.PriceData, error) {
	return c.primary.PriceData(ctx, ticker)
}

func (c *Composite) AnalystData(ctx context.Context, ticker string) (*core.AnalystData, error) {
	return c.primary.AnalystData(ctx, ticker)
}

func (c *Composite) News(ctx context.Context, ticker string, days int) ([]core.NewsItem, error) {
	return c.primary.News(ctx, ticker, days)
}
