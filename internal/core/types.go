package core

import "time"

// CompanyType classifies a company for analyzer applicability.
type CompanyType string

const (
	CompanyMatureProfitable  CompanyType = "mature_profitable"
	CompanyGrowthProfitable  CompanyType = "growth_profitable"
	CompanyCyclical          CompanyType = "cyclical"
	CompanyTurnaround        CompanyType = "turnaround"
	CompanyStartupLossMaking CompanyType = "startup_loss_making"
	CompanyREIT              CompanyType = "reit"
	CompanyFinancial         CompanyType = "financial"
	CompanyCommodity         CompanyType = "commodity"
	CompanyETF               CompanyType = "etf"
)

// AnalysisType identifies an analyzer strategy. It is the registry key.
type AnalysisType string

const (
	AnalysisDCF                 AnalysisType = "dcf"
	AnalysisTechnical           AnalysisType = "technical"
	AnalysisComparable          AnalysisType = "comparable"
	AnalysisStartup             AnalysisType = "startup"
	AnalysisAIInsights          AnalysisType = "ai_insights"
	AnalysisNewsSentiment       AnalysisType = "news_sentiment"
	AnalysisBusinessModel       AnalysisType = "business_model"
	AnalysisCompetitivePosition AnalysisType = "competitive_position"
	AnalysisManagementQuality   AnalysisType = "management_quality"
	AnalysisFinancialHealth     AnalysisType = "financial_health"
	AnalysisAnalystConsensus    AnalysisType = "analyst_consensus"
	AnalysisIndustry            AnalysisType = "industry_analysis"
	AnalysisRevenueStream       AnalysisType = "revenue_stream"
)

// RecommendationLabel is an analyzer's or the consolidated stance on a stock.
type RecommendationLabel string

const (
	StrongBuy      RecommendationLabel = "Strong Buy"
	Buy            RecommendationLabel = "Buy"
	Hold           RecommendationLabel = "Hold"
	Sell           RecommendationLabel = "Sell"
	StrongSell     RecommendationLabel = "Strong Sell"
	SpeculativeBuy RecommendationLabel = "Speculative Buy"
	Monitor        RecommendationLabel = "Monitor"
)

// Confidence expresses how much an analyzer trusts its own output.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// ErrorKind categorizes analyzer failures.
type ErrorKind string

const (
	ErrKindDataUnavailable   ErrorKind = "data_unavailable"
	ErrKindComputationFailed ErrorKind = "computation_failed"
	ErrKindTimeout           ErrorKind = "timeout"
	ErrKindNotApplicable     ErrorKind = "not_applicable"
)

// FinancialMetrics is the fundamental data bag for one ticker.
type FinancialMetrics struct {
	Ticker              string  `json:"ticker"`
	LongName            string  `json:"long_name"`
	Sector              string  `json:"sector"`
	Industry            string  `json:"industry"`
	QuoteType           string  `json:"quote_type"`
	FundFamily          string  `json:"fund_family"`
	Category            string  `json:"category"`
	MarketCap           float64 `json:"market_cap"`
	CurrentPrice        float64 `json:"current_price"`
	NetIncome           float64 `json:"net_income"`
	FreeCashFlow        float64 `json:"free_cash_flow"`
	TotalRevenue        float64 `json:"total_revenue"`
	YearlyRevenueGrowth float64 `json:"yearly_revenue_growth"`
	EarningsGrowth      float64 `json:"earnings_growth"`
	ROE                 float64 `json:"roe"`
	DebtToEquity        float64 `json:"debt_to_equity"`
	CurrentRatio        float64 `json:"current_ratio"`
	PERatio             float64 `json:"pe_ratio"`
	PBRatio             float64 `json:"pb_ratio"`
	DividendYield       float64 `json:"dividend_yield"`
	TotalCash           float64 `json:"total_cash"`
	TotalDebt           float64 `json:"total_debt"`
	SharesOutstanding   float64 `json:"shares_outstanding"`

	// Fields observed vs missing. Zero values are ambiguous for ratios,
	// so presence is tracked explicitly for the quality calculator.
	Present map[string]bool `json:"-"`
}

// Has reports whether a metric field was actually populated by the provider.
func (m *FinancialMetrics) Has(field string) bool {
	if m == nil || m.Present == nil {
		return false
	}
	return m.Present[field]
}

// Bar is one OHLCV candle.
type Bar struct {
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
	Time   time.Time `json:"time"`
}

// PriceData is the price history bag for one ticker.
type PriceData struct {
	Ticker       string  `json:"ticker"`
	CurrentPrice float64 `json:"current_price"`
	History      []Bar   `json:"history"`
}

// AnalystData is the independent professional-consensus view on a ticker.
type AnalystData struct {
	Ticker             string  `json:"ticker"`
	TargetPrice        float64 `json:"target_price"`
	TargetHigh         float64 `json:"target_high"`
	TargetLow          float64 `json:"target_low"`
	RecommendationMean float64 `json:"recommendation_mean"`
	AnalystCount       int     `json:"analyst_count"`
}

// NewsItem is one headline used by sentiment and industry analyzers.
type NewsItem struct {
	Title       string    `json:"title"`
	Publisher   string    `json:"publisher"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
}

// QualityScore grades data completeness and fundamental quality.
type QualityScore struct {
	Score          int    `json:"quality_score"`
	Grade          string `json:"grade"` // A/B/C/D
	DataQuality    string `json:"data_quality"`
	MissingPenalty int    `json:"missing_penalty"`
}

// AnalyzerError is a typed per-method failure.
type AnalyzerError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *AnalyzerError) Error() string { return e.Message }

// AnalyzerResult is the uniform per-method output. Exactly one of three
// outcomes holds: success (Err == nil, Applicable), explicit failure
// (Err != nil), or not-applicable (Applicable == false, Err == nil).
// Consumers must not read any other field when Err is set.
type AnalyzerResult struct {
	Type           AnalysisType        `json:"analysis_type"`
	Applicable     bool                `json:"applicable"`
	Reason         string              `json:"reason,omitempty"`
	Recommendation RecommendationLabel `json:"recommendation,omitempty"`
	PredictedPrice *float64            `json:"predicted_price,omitempty"`
	CurrentPrice   *float64            `json:"current_price,omitempty"`
	Confidence     Confidence          `json:"confidence,omitempty"`
	Err            *AnalyzerError      `json:"error,omitempty"`

	// Method-specific extension fields (trend, volatility, valuation, ...).
	Details map[string]any `json:"details,omitempty"`
}

// OK reports whether the result carries a usable analysis.
func (r AnalyzerResult) OK() bool {
	return r.Err == nil && r.Applicable
}

// Detail returns a named extension field, or nil.
func (r AnalyzerResult) Detail(key string) any {
	if r.Details == nil {
		return nil
	}
	return r.Details[key]
}

// NotApplicable builds the skip marker for an analyzer whose predicate
// rejected the company type.
func NotApplicable(t AnalysisType, companyType CompanyType) AnalyzerResult {
	return AnalyzerResult{
		Type:       t,
		Applicable: false,
		Reason:     string(t) + " not applicable to " + string(companyType),
	}
}

// AnalyzerFailure builds an explicit error result.
func AnalyzerFailure(t AnalysisType, kind ErrorKind, msg string) AnalyzerResult {
	return AnalyzerResult{
		Type:       t,
		Applicable: true,
		Err:        &AnalyzerError{Kind: kind, Message: msg},
	}
}

// ConsolidatedRecommendation is the value object produced by weighted
// consensus over the per-method results. Never mutated after construction.
type ConsolidatedRecommendation struct {
	FinalRecommendation RecommendationLabel                  `json:"final_recommendation"`
	ConfidenceLevel     Confidence                           `json:"confidence_level"`
	ConsensusScore      float64                              `json:"consensus_score"`
	Individual          map[AnalysisType]RecommendationLabel `json:"individual_recommendations"`
	PriceTargets        map[AnalysisType]float64             `json:"price_targets"`
}

// Recommendation is the public-facing consolidated view for one ticker.
type Recommendation struct {
	Ticker          string              `json:"ticker"`
	Recommendation  RecommendationLabel `json:"recommendation"`
	Confidence      Confidence          `json:"confidence"`
	ConsensusScore  float64             `json:"consensus_score"`
	TargetPrice     *float64            `json:"target_price,omitempty"`
	UpsidePotential *float64            `json:"upside_potential,omitempty"`
	RiskLevel       string              `json:"risk_level"`
	BullishSignals  []string            `json:"bullish_signals"`
	BearishSignals  []string            `json:"bearish_signals"`
	KeyRisks        []string            `json:"key_risks"`
	Summary         string              `json:"summary"`
}

// Alignment categorizes how our target relates to the analyst consensus.
type Alignment string

const (
	PreciseAligned     Alignment = "Precise_Aligned"
	InvestmentAligned  Alignment = "Investment_Aligned"
	DirectionalAligned Alignment = "Directional_Aligned"
	Divergent          Alignment = "Divergent"
)

// ComparisonResult records one (ticker, method) comparison against the
// professional analyst consensus.
type ComparisonResult struct {
	Ticker         string       `json:"ticker"`
	Method         AnalysisType `json:"method"`
	OurPrice       float64      `json:"our_price"`
	AnalystTarget  float64      `json:"analyst_target"`
	CurrentPrice   float64      `json:"current_price"`
	OurUpside      float64      `json:"our_upside"`
	AnalystUpside  float64      `json:"analyst_upside"`
	DeviationScore float64      `json:"deviation_score"`
	Alignment      Alignment    `json:"alignment"`
	BothBullish    bool         `json:"both_bullish"`
	BothBearish    bool         `json:"both_bearish"`
	AnalystCount   int          `json:"analyst_count"`
}

// MethodComparisonStats summarizes comparisons per method.
type MethodComparisonStats struct {
	TotalComparisons  int     `json:"total_comparisons"`
	AlignedCount      int     `json:"aligned_count"`
	BullishConvergent int     `json:"bullish_convergent"`
	AlignmentRate     float64 `json:"alignment_rate"`
	AvgDeviation      float64 `json:"avg_deviation"`
}

// AnalystComparison bundles per-method comparisons with summary statistics.
type AnalystComparison struct {
	Comparisons []ComparisonResult                     `json:"comparisons"`
	Summary     map[AnalysisType]MethodComparisonStats `json:"summary"`
}

// AnalysisPayload is the full output of one AnalyzeStock call.
type AnalysisPayload struct {
	ID                string                          `json:"id"`
	Ticker            string                          `json:"ticker"`
	CompanyType       CompanyType                     `json:"company_type"`
	Metrics           *FinancialMetrics               `json:"financial_metrics"`
	QualityScore      QualityScore                    `json:"quality_score"`
	Analyses          map[AnalysisType]AnalyzerResult `json:"analyses"`
	Recommendation    *Recommendation                 `json:"final_recommendation,omitempty"`
	AnalystComparison *AnalystComparison              `json:"analyst_comparison,omitempty"`
	ExecutionSeconds  float64                         `json:"execution_time_seconds"`
	AnalysesCount     int                             `json:"analyses_count"`
	GeneratedAt       time.Time                       `json:"generated_at"`
}
