package formulas

// DrawdownMetrics describes how far a value series has fallen from its peak
type DrawdownMetrics struct {
	MaxDrawdown     float64 `json:"max_drawdown"`     // deepest fall from any peak, 0.25 = 25%
	CurrentDrawdown float64 `json:"current_drawdown"` // fall from the latest peak
	DaysInDrawdown  int     `json:"days_in_drawdown"` // entries since the peak
	PeakValue       float64 `json:"peak_value"`
	CurrentValue    float64 `json:"current_value"`
}

// Drawdown calculates drawdown metrics over a chronological value series.
// Returns nil when there are fewer than two entries.
func Drawdown(values []float64) *DrawdownMetrics {
	if len(values) < 2 {
		return nil
	}

	maxDrawdown := 0.0
	peak := values[0]
	peakIndex := 0
	current := values[len(values)-1]

	for i, v := range values {
		if v > peak {
			peak = v
			peakIndex = i
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDrawdown {
				maxDrawdown = dd
			}
		}
	}

	currentDrawdown := 0.0
	if peak > 0 {
		currentDrawdown = (peak - current) / peak
	}

	return &DrawdownMetrics{
		MaxDrawdown:     maxDrawdown,
		CurrentDrawdown: currentDrawdown,
		DaysInDrawdown:  len(values) - 1 - peakIndex,
		PeakValue:       peak,
		CurrentValue:    current,
	}
}
