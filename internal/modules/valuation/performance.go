package valuation

import (
	"github.com/quayside/portfolio-valuer/pkg/formulas"
)

// PerformanceSummary describes the portfolio's value history as a whole
type PerformanceSummary struct {
	Days                 int                       `json:"days"`
	StartDate            string                    `json:"start_date"`
	EndDate              string                    `json:"end_date"`
	StartValue           float64                   `json:"start_value"`
	EndValue             float64                   `json:"end_value"`
	TotalReturn          float64                   `json:"total_return"`
	AnnualizedVolatility float64                   `json:"annualized_volatility"`
	SharpeRatio          *float64                  `json:"sharpe_ratio,omitempty"`
	Drawdown             *formulas.DrawdownMetrics `json:"drawdown,omitempty"`
}

// Performance computes summary statistics over a value history.
// Returns nil when the history holds fewer than two dates.
func Performance(values map[string]float64) *PerformanceSummary {
	points := SortedHistory(values)
	if len(points) < 2 {
		return nil
	}

	raw := make([]float64, len(points))
	for i, p := range points {
		raw[i] = p.Value
	}

	first, last := points[0], points[len(points)-1]

	totalReturn := 0.0
	if first.Value != 0 {
		totalReturn = (last.Value - first.Value) / first.Value
	}

	return &PerformanceSummary{
		Days:                 len(points),
		StartDate:            first.Date,
		EndDate:              last.Date,
		StartValue:           first.Value,
		EndValue:             last.Value,
		TotalReturn:          totalReturn,
		AnnualizedVolatility: formulas.AnnualizedVolatility(formulas.Returns(raw)),
		SharpeRatio:          formulas.SharpeFromValues(raw, 0),
		Drawdown:             formulas.Drawdown(raw),
	}
}
