package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyFrom(values ...float64) []HistoryPoint {
	points := make([]HistoryPoint, len(values))
	for i, v := range values {
		points[i] = HistoryPoint{Rate: v, RecordedAt: int64(1700000000 + i*3600)}
	}
	return points
}

func TestAnalyzeTrendEmptyHistory(t *testing.T) {
	assert.Nil(t, AnalyzeTrend("EUR", nil))
}

func TestAnalyzeTrendShortHistoryUsesMean(t *testing.T) {
	trend := AnalyzeTrend("EUR", historyFrom(1.0, 1.2))

	require.NotNil(t, trend)
	assert.Equal(t, "EUR", trend.Code)
	assert.InDelta(t, 1.2, trend.Current, 1e-9)
	assert.InDelta(t, 1.1, trend.Smoothed, 1e-9)
	assert.Equal(t, 2, trend.Samples)
	assert.Equal(t, "up", trend.Direction)
}

func TestAnalyzeTrendSmoothedOverWindow(t *testing.T) {
	// Last five values are 1.2..1.6, their SMA is 1.4
	trend := AnalyzeTrend("GBP", historyFrom(1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6))

	require.NotNil(t, trend)
	assert.InDelta(t, 1.4, trend.Smoothed, 1e-9)
	assert.Equal(t, "up", trend.Direction)
}

func TestAnalyzeTrendDirectionDown(t *testing.T) {
	trend := AnalyzeTrend("GEL", historyFrom(0.40, 0.39, 0.38, 0.37, 0.36, 0.35))

	require.NotNil(t, trend)
	assert.Equal(t, "down", trend.Direction)
}

func TestAnalyzeTrendFlatSeries(t *testing.T) {
	trend := AnalyzeTrend("USD", historyFrom(1.0, 1.0, 1.0, 1.0, 1.0, 1.0))

	require.NotNil(t, trend)
	assert.Equal(t, "flat", trend.Direction)
	assert.Zero(t, trend.Volatility)
}

func TestAnalyzeTrendVolatility(t *testing.T) {
	steady := AnalyzeTrend("A", historyFrom(1.0, 1.01, 1.0, 1.01, 1.0))
	jumpy := AnalyzeTrend("B", historyFrom(1.0, 1.5, 0.8, 1.4, 0.9))

	require.NotNil(t, steady)
	require.NotNil(t, jumpy)
	assert.Greater(t, jumpy.Volatility, steady.Volatility)

	single := AnalyzeTrend("C", historyFrom(1.0))
	require.NotNil(t, single)
	assert.Zero(t, single.Volatility)
}
