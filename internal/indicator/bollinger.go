package indicator

import "math"

// Bands holds the latest Bollinger band values.
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger calculates the latest Bollinger Bands over the given period with
// the given standard-deviation multiplier. Returns false when there is not
// enough history.
func Bollinger(prices []float64, period int, mult float64) (Bands, bool) {
	if len(prices) < period {
		return Bands{}, false
	}

	window := prices[len(prices)-period:]
	var sum float64
	for _, p := range window {
		sum += p
	}
	mean := sum / float64(period)

	var variance float64
	for _, p := range window {
		variance += (p - mean) * (p - mean)
	}
	std := math.Sqrt(variance / float64(period))

	return Bands{
		Upper:  mean + mult*std,
		Middle: mean,
		Lower:  mean - mult*std,
	}, true
}

// AnnualizedVolatility computes the standard deviation of daily returns
// scaled to a 252-day trading year.
func AnnualizedVolatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns = append(returns, prices[i]/prices[i-1]-1)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(252)
}
