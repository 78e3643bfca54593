package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReturns(t *testing.T) {
	returns := Returns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-9)
	assert.InDelta(t, -0.10, returns[1], 1e-9)
}

func TestReturnsTooShort(t *testing.T) {
	assert.Empty(t, Returns([]float64{100}))
	assert.Empty(t, Returns(nil))
}

func TestDrawdown(t *testing.T) {
	// Peak at 120, trough at 90: max drawdown 25%
	metrics := Drawdown([]float64{100, 120, 90, 108})
	require.NotNil(t, metrics)

	assert.InDelta(t, 0.25, metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 0.10, metrics.CurrentDrawdown, 1e-9)
	assert.Equal(t, 2, metrics.DaysInDrawdown)
	assert.Equal(t, 120.0, metrics.PeakValue)
	assert.Equal(t, 108.0, metrics.CurrentValue)
}

func TestDrawdownMonotonicRise(t *testing.T) {
	metrics := Drawdown([]float64{100, 110, 120})
	require.NotNil(t, metrics)
	assert.Zero(t, metrics.MaxDrawdown)
	assert.Zero(t, metrics.DaysInDrawdown)
}

func TestDrawdownTooShort(t *testing.T) {
	assert.Nil(t, Drawdown([]float64{100}))
}

func TestSharpeRatioNoVariance(t *testing.T) {
	assert.Nil(t, SharpeRatio([]float64{0.01, 0.01, 0.01}, 0, 252))
}

func TestSharpeFromValues(t *testing.T) {
	sharpe := SharpeFromValues([]float64{100, 102, 101, 104, 103}, 0)
	require.NotNil(t, sharpe)
	assert.Greater(t, *sharpe, 0.0, "a rising series earns a positive ratio")
}
