package calculator

import (
	"errors"
	"math"

	"SectorPulse/internal/model"
)

// Moving-average windows used for the crossover signal. Both are row counts,
// not calendar days.
const (
	ShortWindow = 20
	LongWindow  = 50
)

var (
	ErrInvalidPeriod    = errors.New("period must be positive")
	ErrInsufficientData = errors.New("not enough data for SMA calculation")
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	if len(prices) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the trailing simple moving average for every row. A row
// has a value only once period rows are available, and only if every close in
// its window is finite. Each window is summed in the same order as
// CalculateSMA so the latest value matches it exactly.
func RollingSMA(prices []float64, period int) ([]model.Num, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	out := make([]model.Num, len(prices))
	for i := period - 1; i < len(prices); i++ {
		window := prices[i+1-period : i+1]
		sum := 0.0
		ok := true
		for _, p := range window {
			if !isFinite(p) {
				ok = false
				break
			}
			sum += p
		}
		if ok {
			out[i] = model.Some(sum / float64(period))
		}
	}
	return out, nil
}

// LatestSMA returns the most recent rolling SMA value of the bars' closes, or
// an absent value when the window is not ready.
func LatestSMA(bars []model.OHLCV, period int) (model.Num, error) {
	series, err := RollingSMA(model.Closes(bars), period)
	if err != nil {
		return model.None(), err
	}
	if len(series) == 0 {
		return model.None(), nil
	}
	return series[len(series)-1], nil
}

// DailyChangePct returns the percentage change between the last two closes.
func DailyChangePct(bars []model.OHLCV) (model.Num, error) {
	if len(bars) < 2 {
		return model.None(), ErrInsufficientData
	}
	prev := bars[len(bars)-2].Close
	last := bars[len(bars)-1].Close
	if prev == 0 {
		return model.None(), errors.New("previous close is zero")
	}
	return model.Some((last - prev) / prev * 100), nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
