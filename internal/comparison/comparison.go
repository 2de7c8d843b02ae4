// Package comparison reconciles the in-house price targets against the
// professional analyst consensus, per method.
package comparison

import (
	"context"

	"github.com/newthinker/insight/internal/core"
	"go.uber.org/zap"
)

// Source is the slice of the data provider this service needs.
type Source interface {
	AnalystData(ctx context.Context, ticker string) (*core.AnalystData, error)
}

// Service compares per-method predicted prices with the analyst target.
type Service struct {
	source Source
	logger *zap.Logger
}

func NewService(source Source, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Compare builds one comparison per method that produced a price target.
// A missing analyst target or empty method set yields a nil result, not an
// error; comparison is strictly additive to the payload.
func (s *Service) Compare(ctx context.Context, ticker string, analyses map[core.AnalysisType]core.AnalyzerResult, currentPrice float64) *core.AnalystComparison {
	if currentPrice <= 0 {
		return nil
	}

	data, err := s.source.AnalystData(ctx, ticker)
	if err != nil || data == nil || data.TargetPrice <= 0 {
		if err != nil && s.logger != nil {
			s.logger.Debug("analyst data unavailable for comparison",
				zap.String("ticker", ticker), zap.Error(err))
		}
		return nil
	}

	var comparisons []core.ComparisonResult
	for t, r := range analyses {
		if !r.OK() || r.PredictedPrice == nil || *r.PredictedPrice <= 0 {
			continue
		}
		// The analyst consensus is the benchmark, not a competitor.
		if t == core.AnalysisAnalystConsensus {
			continue
		}
		comparisons = append(comparisons, compare(ticker, t, *r.PredictedPrice, data.TargetPrice, currentPrice, data.AnalystCount))
	}
	if len(comparisons) == 0 {
		return nil
	}

	return &core.AnalystComparison{
		Comparisons: comparisons,
		Summary:     Summarize(comparisons),
	}
}

func compare(ticker string, method core.AnalysisType, ourPrice, analystTarget, currentPrice float64, analystCount int) core.ComparisonResult {
	ourUpside := (ourPrice - currentPrice) / currentPrice * 100
	analystUpside := (analystTarget - currentPrice) / currentPrice * 100
	deviation := ourUpside - analystUpside
	if deviation < 0 {
		deviation = -deviation
	}

	return core.ComparisonResult{
		Ticker:         ticker,
		Method:         method,
		OurPrice:       ourPrice,
		AnalystTarget:  analystTarget,
		CurrentPrice:   currentPrice,
		OurUpside:      ourUpside,
		AnalystUpside:  analystUpside,
		DeviationScore: deviation,
		Alignment:      alignment(deviation, ourUpside, analystUpside),
		BothBullish:    ourUpside > 5 && analystUpside > 5,
		BothBearish:    ourUpside < -5 && analystUpside < -5,
		AnalystCount:   analystCount,
	}
}

func alignment(deviation, ourUpside, analystUpside float64) core.Alignment {
	if (ourUpside > 0 && analystUpside < 0) || (ourUpside < 0 && analystUpside > 0) {
		return core.Divergent
	}
	switch {
	case deviation <= 5:
		return core.PreciseAligned
	case deviation <= 15:
		return core.InvestmentAligned
	default:
		return core.DirectionalAligned
	}
}

// Summarize aggregates comparisons per method.
func Summarize(comparisons []core.ComparisonResult) map[core.AnalysisType]core.MethodComparisonStats {
	byMethod := make(map[core.AnalysisType][]core.ComparisonResult)
	for _, c := range comparisons {
		byMethod[c.Method] = append(byMethod[c.Method], c)
	}

	summary := make(map[core.AnalysisType]core.MethodComparisonStats, len(byMethod))
	for method, comps := range byMethod {
		var aligned, bullishConvergent int
		var deviationSum float64
		for _, c := range comps {
			if c.Alignment != core.Divergent {
				aligned++
			}
			if c.BothBullish {
				bullishConvergent++
			}
			deviationSum += c.DeviationScore
		}
		summary[method] = core.MethodComparisonStats{
			TotalComparisons:  len(comps),
			AlignedCount:      aligned,
			BullishConvergent: bullishConvergent,
			AlignmentRate:     float64(aligned) / float64(len(comps)) * 100,
			AvgDeviation:      deviationSum / float64(len(comps)),
		}
	}
	return summary
}
