package indicator

// MACDResult holds the three MACD series aligned to the same end date.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates Moving Average Convergence Divergence with the standard
// fast/slow/signal periods. All three slices end at the latest price; Signal
// and Histogram are shorter than Line by signalPeriod-1.
func MACD(prices []float64, fast, slow, signalPeriod int) MACDResult {
	if len(prices) < slow+signalPeriod {
		return MACDResult{}
	}

	fastEMA := EMA(prices, fast)
	slowEMA := EMA(prices, slow)

	// Align: slowEMA starts later, drop the fastEMA head.
	offset := len(fastEMA) - len(slowEMA)
	line := make([]float64, len(slowEMA))
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signal := EMA(line, signalPeriod)
	histOffset := len(line) - len(signal)
	hist := make([]float64, len(signal))
	for i := range signal {
		hist[i] = line[i+histOffset] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist}
}
