// Package yahoo implements the DataProvider contract against the public
// Yahoo Finance JSON endpoints (quoteSummary, chart, search).
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/newthinker/insight/internal/config"
	"github.com/newthinker/insight/internal/core"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// validTicker matches symbols like AAPL, MSFT, BRK.B, 0700.HK.
var validTicker = regexp.MustCompile(`^[A-Za-z0-9]{1,10}([.-][A-Za-z0-9]{1,4})?$`)

func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if len(ticker) > 20 {
		return fmt.Errorf("ticker too long: %s", ticker)
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Client is the Yahoo Finance data provider.
type Client struct {
	http        *http.Client
	baseURL     string
	historyDays int
}

// New creates a Yahoo client from config.
func New(cfg config.YahooConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	days := cfg.HistoryDays
	if days <= 0 {
		days = 365
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     base,
		historyDays: days,
	}
}

func (c *Client) Name() string { return "yahoo" }

// quoteSummary response shapes. Yahoo wraps numerics in {raw, fmt} objects.

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *yahooError          `json:"error"`
	} `json:"quoteSummary"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type quoteSummaryResult struct {
	Price *struct {
		LongName           string    `json:"longName"`
		QuoteType          string    `json:"quoteType"`
		RegularMarketPrice *rawValue `json:"regularMarketPrice"`
		MarketCap          *rawValue `json:"marketCap"`
	} `json:"price"`
	SummaryProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"summaryProfile"`
	FundProfile *struct {
		Family        string `json:"family"`
		CategoryName  string `json:"categoryName"`
		LegalType     string `json:"legalType"`
	} `json:"fundProfile"`
	FinancialData *struct {
		FreeCashflow     *rawValue `json:"freeCashflow"`
		TotalCash        *rawValue `json:"totalCash"`
		TotalDebt        *rawValue `json:"totalDebt"`
		TotalRevenue     *rawValue `json:"totalRevenue"`
		RevenueGrowth    *rawValue `json:"revenueGrowth"`
		EarningsGrowth   *rawValue `json:"earningsGrowth"`
		ReturnOnEquity   *rawValue `json:"returnOnEquity"`
		DebtToEquity     *rawValue `json:"debtToEquity"`
		CurrentRatio     *rawValue `json:"currentRatio"`
		TargetMeanPrice  *rawValue `json:"targetMeanPrice"`
		TargetHighPrice  *rawValue `json:"targetHighPrice"`
		TargetLowPrice   *rawValue `json:"targetLowPrice"`
		RecommendationMean   *rawValue `json:"recommendationMean"`
		NumberOfAnalystOpinions *rawValue `json:"numberOfAnalystOpinions"`
	} `json:"financialData"`
	DefaultKeyStatistics *struct {
		NetIncomeToCommon *rawValue `json:"netIncomeToCommon"`
		TrailingPE        *rawValue `json:"trailingPE"`
		PriceToBook       *rawValue `json:"priceToBook"`
		SharesOutstanding *rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
	SummaryDetail *struct {
		DividendYield *rawValue `json:"dividendYield"`
		TrailingPE    *rawValue `json:"trailingPE"`
	} `json:"summaryDetail"`
}

// FinancialMetrics fetches the fundamental bag via quoteSummary.
func (c *Client) FinancialMetrics(ctx context.Context, ticker string) (*core.FinancialMetrics, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	modules := "price,summaryProfile,summaryDetail,financialData,defaultKeyStatistics,fundProfile"
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), modules)

	var result quoteSummaryResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, core.WrapError(core.ErrMetricsUnavailable, err)
	}
	if result.QuoteSummary.Error != nil {
		return nil, core.WrapError(core.ErrMetricsUnavailable,
			fmt.Errorf("yahoo: %s", result.QuoteSummary.Error.Description))
	}
	if len(result.QuoteSummary.Result) == 0 {
		return nil, core.WrapError(core.ErrTickerNotFound, fmt.Errorf("no data for %s", ticker))
	}

	r := result.QuoteSummary.Result[0]
	m := &core.FinancialMetrics{Ticker: ticker, Present: make(map[string]bool)}

	if r.Price != nil {
		m.LongName = r.Price.LongName
		m.QuoteType = r.Price.QuoteType
		if r.Price.RegularMarketPrice != nil {
			m.CurrentPrice = r.Price.RegularMarketPrice.Raw
			m.Present["current_price"] = true
		}
		if r.Price.MarketCap != nil {
			m.MarketCap = r.Price.MarketCap.Raw
			m.Present["market_cap"] = true
		}
	}
	if r.SummaryProfile != nil {
		m.Sector = r.SummaryProfile.Sector
		m.Industry = r.SummaryProfile.Industry
	}
	if r.FundProfile != nil {
		m.FundFamily = r.FundProfile.Family
		m.Category = r.FundProfile.CategoryName
	}
	if fd := r.FinancialData; fd != nil {
		setMetric(&m.FreeCashFlow, fd.FreeCashflow, m.Present, "free_cash_flow")
		setMetric(&m.TotalCash, fd.TotalCash, m.Present, "total_cash")
		setMetric(&m.TotalDebt, fd.TotalDebt, m.Present, "total_debt")
		setMetric(&m.TotalRevenue, fd.TotalRevenue, m.Present, "total_revenue")
		setMetric(&m.YearlyRevenueGrowth, fd.RevenueGrowth, m.Present, "yearly_revenue_growth")
		setMetric(&m.EarningsGrowth, fd.EarningsGrowth, m.Present, "earnings_growth")
		setMetric(&m.ROE, fd.ReturnOnEquity, m.Present, "roe")
		setMetric(&m.CurrentRatio, fd.CurrentRatio, m.Present, "current_ratio")
		if fd.DebtToEquity != nil {
			// Yahoo reports debtToEquity as a percentage.
			m.DebtToEquity = fd.DebtToEquity.Raw / 100
			m.Present["debt_to_equity"] = true
		}
	}
	if ks := r.DefaultKeyStatistics; ks != nil {
		setMetric(&m.NetIncome, ks.NetIncomeToCommon, m.Present, "net_income")
		setMetric(&m.PERatio, ks.TrailingPE, m.Present, "pe_ratio")
		setMetric(&m.PBRatio, ks.PriceToBook, m.Present, "pb_ratio")
		setMetric(&m.SharesOutstanding, ks.SharesOutstanding, m.Present, "shares_outstanding")
	}
	if sd := r.SummaryDetail; sd != nil {
		setMetric(&m.DividendYield, sd.DividendYield, m.Present, "dividend_yield")
		if !m.Has("pe_ratio") {
			setMetric(&m.PERatio, sd.TrailingPE, m.Present, "pe_ratio")
		}
	}

	return m, nil
}

func setMetric(dst *float64, src *rawValue, present map[string]bool, name string) {
	if src == nil {
		return
	}
	*dst = src.Raw
	present[name] = true
}

// chart response shapes.

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

// PriceData fetches daily bars over the configured history window.
func (c *Client) PriceData(ctx context.Context, ticker string) (*core.PriceData, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	end := time.Now()
	start := end.AddDate(0, 0, -c.historyDays)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	var result chartResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, core.WrapError(core.ErrPriceUnavailable, err)
	}
	if result.Chart.Error != nil {
		return nil, core.WrapError(core.ErrPriceUnavailable,
			fmt.Errorf("yahoo: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrTickerNotFound, fmt.Errorf("no data for %s", ticker))
	}

	r := result.Chart.Result[0]
	pd := &core.PriceData{
		Ticker:       ticker,
		CurrentPrice: r.Meta.RegularMarketPrice,
	}

	if len(r.Indicators.Quote) > 0 {
		q := r.Indicators.Quote[0]
		for i, ts := range r.Timestamp {
			// Yahoo pads incomplete sessions with nulls.
			if i >= len(q.Close) || q.Close[i] == nil {
				continue
			}
			bar := core.Bar{
				Close: *q.Close[i],
				Time:  time.Unix(ts, 0).UTC(),
			}
			if i < len(q.Open) && q.Open[i] != nil {
				bar.Open = *q.Open[i]
			}
			if i < len(q.High) && q.High[i] != nil {
				bar.High = *q.High[i]
			}
			if i < len(q.Low) && q.Low[i] != nil {
				bar.Low = *q.Low[i]
			}
			if i < len(q.Volume) && q.Volume[i] != nil {
				bar.Volume = *q.Volume[i]
			}
			pd.History = append(pd.History, bar)
		}
	}

	return pd, nil
}

// AnalystData fetches the professional consensus from financialData.
func (c *Client) AnalystData(ctx context.Context, ticker string) (*core.AnalystData, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=financialData",
		c.baseURL, url.PathEscape(ticker))

	var result quoteSummaryResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, core.WrapError(core.ErrAnalystUnavailable, err)
	}
	if result.QuoteSummary.Error != nil || len(result.QuoteSummary.Result) == 0 {
		return nil, core.WrapError(core.ErrAnalystUnavailable, fmt.Errorf("no analyst data for %s", ticker))
	}

	fd := result.QuoteSummary.Result[0].FinancialData
	if fd == nil || fd.TargetMeanPrice == nil {
		return nil, core.WrapError(core.ErrAnalystUnavailable, fmt.Errorf("no target price for %s", ticker))
	}

	ad := &core.AnalystData{
		Ticker:      ticker,
		TargetPrice: fd.TargetMeanPrice.Raw,
	}
	if fd.TargetHighPrice != nil {
		ad.TargetHigh = fd.TargetHighPrice.Raw
	}
	if fd.TargetLowPrice != nil {
		ad.TargetLow = fd.TargetLowPrice.Raw
	}
	if fd.RecommendationMean != nil {
		ad.RecommendationMean = fd.RecommendationMean.Raw
	}
	if fd.NumberOfAnalystOpinions != nil {
		ad.AnalystCount = int(fd.NumberOfAnalystOpinions.Raw)
	}

	return ad, nil
}

// search response shapes.

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// News fetches recent headlines via the search endpoint.
func (c *Client) News(ctx context.Context, ticker string, days int) ([]core.NewsItem, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}

	u := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=20&quotesCount=0",
		c.baseURL, url.QueryEscape(ticker))

	var result searchResponse
	if err := c.getJSON(ctx, u, &result); err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	var items []core.NewsItem
	for _, n := range result.News {
		published := time.Unix(n.ProviderPublishTime, 0).UTC()
		if published.Before(cutoff) {
			continue
		}
		items = append(items, core.NewsItem{
			Title:       n.Title,
			Publisher:   n.Publisher,
			Link:        n.Link,
			PublishedAt: published,
		})
	}

	return items, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; insight/1.0)")

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
