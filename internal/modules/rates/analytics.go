package rates

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// smoothingPeriod is the SMA window applied to rate history for trend
// reporting. Short enough to follow real moves, long enough to hide
// per-sync jitter.
const smoothingPeriod = 5

// Trend summarises the recent behavior of one currency's rate.
type Trend struct {
	Code       string  `json:"code"`
	Current    float64 `json:"current"`
	Smoothed   float64 `json:"smoothed"`
	Mean       float64 `json:"mean"`
	Volatility float64 `json:"volatility"`
	Samples    int     `json:"samples"`
	Direction  string  `json:"direction"`
}

// AnalyzeTrend computes smoothed and dispersion statistics over a rate
// history. Returns nil when there is no history at all.
func AnalyzeTrend(code string, points []HistoryPoint) *Trend {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Rate
	}

	current := values[len(values)-1]
	trend := &Trend{
		Code:       code,
		Current:    current,
		Smoothed:   smoothedRate(values),
		Mean:       stat.Mean(values, nil),
		Volatility: volatility(values),
		Samples:    len(values),
	}

	switch {
	case current > trend.Smoothed*(1+1e-6):
		trend.Direction = "up"
	case current < trend.Smoothed*(1-1e-6):
		trend.Direction = "down"
	default:
		trend.Direction = "flat"
	}

	return trend
}

// smoothedRate returns the latest SMA value over the history, falling back
// to the plain mean when the series is shorter than the window.
func smoothedRate(values []float64) float64 {
	if len(values) < smoothingPeriod {
		return stat.Mean(values, nil)
	}

	sma := talib.Sma(values, smoothingPeriod)
	last := sma[len(sma)-1]
	if math.IsNaN(last) {
		return stat.Mean(values, nil)
	}
	return last
}

// volatility is the sample standard deviation of the series. A single
// observation has no dispersion.
func volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	sd := stat.StdDev(values, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}
