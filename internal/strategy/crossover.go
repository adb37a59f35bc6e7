package strategy

import "SectorPulse/internal/model"

// Crossover maps the latest short and long moving averages to a signal:
// Buy when the short average is above the long one, Sell otherwise, Unknown
// while either average is not yet defined.
func Crossover(short, long model.Num) model.Signal {
	if !short.Valid || !long.Valid {
		return model.SignalUnknown
	}
	if short.Float64 > long.Float64 {
		return model.SignalBuy
	}
	return model.SignalSell
}

// CountSignals tallies the signals of a record set.
func CountSignals(records []model.SymbolRecord) map[model.Signal]int {
	counts := map[model.Signal]int{
		model.SignalBuy:     0,
		model.SignalSell:    0,
		model.SignalUnknown: 0,
	}
	for _, r := range records {
		sig := r.Signal
		if sig == "" {
			sig = model.SignalUnknown
		}
		counts[sig]++
	}
	return counts
}
