// Package provider defines the data-provider contract consumed by the
// orchestrator and analyzers. Providers return explicit errors and never
// panic across the boundary; every capability may fail independently.
package provider

import (
	"context"

	"github.com/newthinker/insight/internal/core"
)

// DataProvider is the capability contract for external market data.
type DataProvider interface {
	Name() string

	// FinancialMetrics fetches the fundamental data bag for a ticker.
	FinancialMetrics(ctx context.Context, ticker string) (*core.FinancialMetrics, error)

	// PriceData fetches price history and the current price.
	PriceData(ctx context.Context, ticker string) (*core.PriceData, error)

	// AnalystData fetches the professional analyst consensus. Callers must
	// treat failure as "comparison unavailable", not as a hard error.
	AnalystData(ctx context.Context, ticker string) (*core.AnalystData, error)

	// News fetches recent headlines for the ticker.
	News(ctx context.Context, ticker string, days int) ([]core.NewsItem, error)
}
