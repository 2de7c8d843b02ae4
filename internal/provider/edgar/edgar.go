// Package edgar fetches company fundamentals from SEC EDGAR. It supplements
// the primary market-data provider when fields are missing; EDGAR requires a
// descriptive User-Agent on every request.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
)

const defaultBaseURL = "https://data.sec.gov"

// Facts holds the subset of company facts the analyzers consume.
type Facts struct {
	CIK          string
	NetIncome    float64
	Revenue      float64
	OperatingCF  float64
	CapEx        float64
	HasNetIncome bool
	HasRevenue   bool
	HasCashFlow  bool
}

// FreeCashFlow derives FCF from operating cash flow and capex.
func (f *Facts) FreeCashFlow() (float64, bool) {
	if !f.HasCashFlow {
		return 0, false
	}
	return f.OperatingCF - f.CapEx, true
}

// Client is the SEC EDGAR company-facts client.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	mu   sync.Mutex
	ciks map[string]string // ticker -> zero-padded CIK
}

// New creates an EDGAR client from config.
func New(cfg config.EdgarConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		baseURL:   base,
		userAgent: cfg.UserAgent,
		ciks:      make(map[string]string),
	}
}

type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
}

// resolveCIK maps a ticker to its zero-padded CIK, caching the full table.
func (c *Client) resolveCIK(ctx context.Context, ticker string) (string, error) {
	upper := strings.ToUpper(ticker)

	c.mu.Lock()
	if cik, ok := c.ciks[upper]; ok {
		c.mu.Unlock()
		return cik, nil
	}
	c.mu.Unlock()

	// The ticker table lives on www.sec.gov, not the data host.
	var table map[string]tickerEntry
	if err := c.getJSON(ctx, "https://www.sec.gov/files/company_tickers.json", &table); err != nil {
		return "", fmt.Errorf("fetching ticker table: %w", err)
	}

	c.mu.Lock()
	for _, e := range table {
		c.ciks[strings.ToUpper(e.Ticker)] = fmt.Sprintf("%010d", e.CIK)
	}
	cik, ok := c.ciks[upper]
	c.mu.Unlock()

	if !ok {
		return "", core.WrapError(core.ErrTickerNotFound, fmt.Errorf("no CIK for %s", ticker))
	}
	return cik, nil
}

type factsResponse struct {
	Facts struct {
		USGAAP map[string]struct {
			Units map[string][]factValue `json:"units"`
		} `json:"us-gaap"`
	} `json:"facts"`
}

type factValue struct {
	Val   float64 `json:"val"`
	End   string  `json:"end"`
	Form  string  `json:"form"`
	Frame string  `json:"frame,omitempty"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"`
}

// CompanyFacts fetches annual fundamentals for a ticker.
func (c *Client) CompanyFacts(ctx context.Context, ticker string) (*Facts, error) {
	cik, err := c.resolveCIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", c.baseURL, cik)
	var resp factsResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	f := &Facts{CIK: cik}
	if v, ok := latestAnnual(resp, "NetIncomeLoss"); ok {
		f.NetIncome = v
		f.HasNetIncome = true
	}
	if v, ok := latestAnnual(resp, "Revenues"); ok {
		f.Revenue = v
		f.HasRevenue = true
	} else if v, ok := latestAnnual(resp, "RevenueFromContractWithCustomerExcludingAssessedTax"); ok {
		f.Revenue = v
		f.HasRevenue = true
	}
	ocf, okOCF := latestAnnual(resp, "NetCashProvidedByUsedInOperatingActivities")
	capex, okCapex := latestAnnual(resp, "PaymentsToAcquirePropertyPlantAndEquipment")
	if okOCF {
		f.OperatingCF = ocf
		if okCapex {
			f.CapEx = capex
		}
		f.HasCashFlow = true
	}

	return f, nil
}

// latestAnnual picks the most recent 10-K value for a us-gaap concept.
func latestAnnual(resp factsResponse, concept string) (float64, bool) {
	fact, ok := resp.Facts.USGAAP[concept]
	if !ok {
		return 0, false
	}
	values, ok := fact.Units["USD"]
	if !ok {
		return 0, false
	}

	var best *factValue
	for i := range values {
		v := &values[i]
		if v.Form != "10-K" || v.FP != "FY" {
			continue
		}
		if best == nil || v.End > best.End {
			best = v
		}
	}
	if best == nil {
		return 0, false
	}
	return best.Val, true
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
