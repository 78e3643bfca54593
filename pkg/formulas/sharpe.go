package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio from periodic returns.
//
//	Sharpe = (mean return - periodic risk-free rate) / std dev of returns
//
// riskFreeRate is annual (0.02 for 2%); periodsPerYear is 252 for daily data.
// Returns nil when there are fewer than two returns or no variance.
func SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) *float64 {
	if len(returns) < 2 {
		return nil
	}

	stdDev := StdDev(returns)
	if stdDev == 0 {
		return nil
	}

	periodicRiskFree := riskFreeRate / float64(periodsPerYear)
	sharpe := (Mean(returns) - periodicRiskFree) / stdDev
	annualized := sharpe * math.Sqrt(float64(periodsPerYear))

	return &annualized
}

// SharpeFromValues calculates the Sharpe ratio directly from a daily value
// series
func SharpeFromValues(values []float64, riskFreeRate float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	return SharpeRatio(Returns(values), riskFreeRate, 252)
}
