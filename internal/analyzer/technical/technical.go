// Package technical derives a trading stance from price action: moving
// average trend, momentum oscillators and the position within the 52-week
// range.
package technical

import (
	"context"
	"fmt"
	"math"

	"github.com/newthinker/insight/internal/analyzer"
	"github.com/newthinker/insight/internal/core"
	"github.com/newthinker/insight/internal/indicator"
	"go.uber.org/zap"
)

// Analyzer scores bullish vs bearish signals across independent indicators
// and nets them into a recommendation.
type Analyzer struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

func (a *Analyzer) Type() core.AnalysisType { return core.AnalysisTechnical }

// Applicable to everything with a price series, funds included.
func (a *Analyzer) Applicable(core.CompanyType) bool { return true }

func (a *Analyzer) Analyze(_ context.Context, ticker string, actx *analyzer.Context) core.AnalyzerResult {
	if actx.Prices == nil || len(actx.Prices.History) == 0 {
		return core.AnalyzerFailure(a.Type(), core.ErrKindDataUnavailable, "no price history available")
	}

	hist := actx.Prices.History
	closes := make([]float64, len(hist))
	highs := make([]float64, len(hist))
	lows := make([]float64, len(hist))
	var volumeSum int64
	for i, b := range hist {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
		volumeSum += b.Volume
	}
	current := closes[len(closes)-1]
	if actx.CurrentPrice > 0 {
		current = actx.CurrentPrice
	}

	ma20 := lastSMA(closes, 20)
	ma50 := lastSMA(closes, 50)
	ma200 := lastSMA(closes, 200)
	vol := indicator.AnnualizedVolatility(closes)

	high52, low52 := maxOf(highs), minOf(lows)
	rangePos := 50.0
	if high52 > low52 {
		rangePos = (current - low52) / (high52 - low52) * 100
	}

	trend := classifyTrend(current, ma20, ma50, ma200)

	sig := signals{}
	sig.scoreTrend(trend)
	if rsi := indicator.RSI(closes, 14); len(rsi) > 0 {
		sig.scoreRSI(rsi[len(rsi)-1])
	}
	macd := indicator.MACD(closes, 12, 26, 9)
	sig.scoreMACD(macd)
	if bands, ok := indicator.Bollinger(closes, 20, 2); ok {
		sig.scoreBollinger(current, bands)
	}
	sig.scoreRange(rangePos)

	rec := sig.recommendation()
	predicted := predictPrice(current, vol, trend, rec)

	if a.logger != nil {
		a.logger.Debug("technical signals",
			zap.String("ticker", ticker),
			zap.String("trend", trend),
			zap.Int("bullish", sig.bullish),
			zap.Int("bearish", sig.bearish))
	}

	details := map[string]any{
		"trend":              trend,
		"volatility_annual":  vol,
		"high_52w":           high52,
		"low_52w":            low52,
		"range_position_pct": rangePos,
		"bullish_signals":    sig.bullish,
		"bearish_signals":    sig.bearish,
		"signal_details":     sig.notes,
		"avg_volume":         float64(volumeSum) / float64(len(hist)),
	}
	if ma20 > 0 {
		details["ma_20"] = ma20
	}
	if ma50 > 0 {
		details["ma_50"] = ma50
	}
	if ma200 > 0 {
		details["ma_200"] = ma200
	}

	return core.AnalyzerResult{
		Type:           a.Type(),
		Applicable:     true,
		Recommendation: rec,
		PredictedPrice: &predicted,
		Confidence:     core.ConfidenceMedium,
		Details:        details,
	}
}

// lastSMA returns the most recent simple moving average, or 0 when the
// series is shorter than the period.
func lastSMA(prices []float64, period int) float64 {
	sma := indicator.SMA(prices, period)
	if len(sma) == 0 {
		return 0
	}
	return sma[len(sma)-1]
}

func classifyTrend(price, ma20, ma50, ma200 float64) string {
	switch {
	case ma50 > 0 && ma200 > 0:
		switch {
		case price > ma50 && ma50 > ma200:
			return "Strong Uptrend"
		case price < ma50 && ma50 < ma200:
			return "Strong Downtrend"
		case price > ma50:
			return "Uptrend"
		case price < ma50:
			return "Downtrend"
		default:
			return "Sideways"
		}
	case ma50 > 0:
		if price > ma50 {
			return "Short-term Uptrend"
		}
		if price < ma50 {
			return "Short-term Downtrend"
		}
		return "Sideways"
	case ma20 > 0:
		if price > ma20 {
			return "Near-term Uptrend"
		}
		if price < ma20 {
			return "Near-term Downtrend"
		}
		return "Sideways"
	default:
		return "Insufficient Data"
	}
}

type signals struct {
	bullish int
	bearish int
	notes   []string
}

func (s *signals) scoreTrend(trend string) {
	switch trend {
	case "Strong Uptrend":
		s.bullish += 3
		s.notes = append(s.notes, "strong MA uptrend")
	case "Uptrend", "Short-term Uptrend", "Near-term Uptrend":
		s.bullish += 2
		s.notes = append(s.notes, "MA uptrend")
	case "Strong Downtrend":
		s.bearish += 3
		s.notes = append(s.notes, "strong MA downtrend")
	case "Downtrend", "Short-term Downtrend", "Near-term Downtrend":
		s.bearish += 2
		s.notes = append(s.notes, "MA downtrend")
	}
}

func (s *signals) scoreRSI(rsi float64) {
	switch {
	case rsi < 30:
		s.bullish += 2
		s.notes = append(s.notes, fmt.Sprintf("RSI oversold (%.1f)", rsi))
	case rsi > 70:
		s.bearish += 2
		s.notes = append(s.notes, fmt.Sprintf("RSI overbought (%.1f)", rsi))
	case rsi <= 50:
		s.bullish++
		s.notes = append(s.notes, "RSI bullish zone")
	default:
		s.bearish++
		s.notes = append(s.notes, "RSI bearish zone")
	}
}

func (s *signals) scoreMACD(m indicator.MACDResult) {
	if len(m.Line) == 0 || len(m.Signal) == 0 {
		return
	}
	line := m.Line[len(m.Line)-1]
	signal := m.Signal[len(m.Signal)-1]
	if line > signal {
		s.bullish += 2
		s.notes = append(s.notes, "MACD bullish crossover")
	} else {
		s.bearish += 2
		s.notes = append(s.notes, "MACD bearish crossover")
	}
	if len(m.Histogram) > 0 {
		if m.Histogram[len(m.Histogram)-1] > 0 {
			s.bullish++
		} else {
			s.bearish++
		}
	}
}

func (s *signals) scoreBollinger(price float64, b indicator.Bands) {
	if price <= b.Lower {
		s.bullish += 2
		s.notes = append(s.notes, "price at lower Bollinger band")
	} else if price >= b.Upper {
		s.bearish += 2
		s.notes = append(s.notes, "price at upper Bollinger band")
	}
}

func (s *signals) scoreRange(rangePos float64) {
	if rangePos < 20 {
		s.bullish++
		s.notes = append(s.notes, "near 52-week low")
	} else if rangePos > 80 {
		s.bearish++
		s.notes = append(s.notes, "near 52-week high")
	}
}

func (s *signals) recommendation() core.RecommendationLabel {
	net := s.bullish - s.bearish
	switch {
	case net >= 4:
		return core.StrongBuy
	case net >= 2:
		return core.Buy
	case net <= -4:
		return core.StrongSell
	case net <= -2:
		return core.Sell
	default:
		return core.Hold
	}
}

// predictPrice projects a 12-month target by scaling current price with
// annualized volatility in the direction of the net signal.
func predictPrice(current, vol float64, trend string, rec core.RecommendationLabel) float64 {
	switch rec {
	case core.StrongBuy, core.Buy:
		return current * (1 + vol*0.8)
	case core.StrongSell, core.Sell:
		return current * (1 - vol*0.3)
	}
	switch trend {
	case "Strong Uptrend", "Uptrend":
		return current * (1 + vol)
	case "Strong Downtrend", "Downtrend":
		return math.Max(current*(1-vol*0.5), 0)
	}
	return current
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
