package analyzer

import (
	"fmt"
	"math"

	"SectorPulse/internal/calculator"
	"SectorPulse/internal/model"
	"SectorPulse/internal/strategy"

	"github.com/rs/zerolog/log"
)

// applyTechnicals sets SMA20, SMA50 and Signal on r. Any failure leaves the
// record Unknown with absent averages and is reported as an Issue.
func applyTechnicals(r *model.SymbolRecord) (issue *Issue) {
	defer func() {
		if p := recover(); p != nil {
			r.SMA20, r.SMA50, r.Signal = model.None(), model.None(), model.SignalUnknown
			issue = &Issue{Symbol: r.Symbol, Kind: IssueComputationFailed, Detail: fmt.Sprint(p)}
			log.Error().Str("symbol", r.Symbol).Interface("panic", p).Msg("error processing historical data")
		}
	}()

	r.SMA20, r.SMA50, r.Signal = model.None(), model.None(), model.SignalUnknown

	if !hasCloses(r.History) {
		log.Warn().Str("symbol", r.Symbol).Msg("invalid historical data")
		return &Issue{Symbol: r.Symbol, Kind: IssueMissingHistory, Detail: "no close prices in history"}
	}

	sma20, err := calculator.LatestSMA(r.History, calculator.ShortWindow)
	if err != nil {
		log.Error().Str("symbol", r.Symbol).Err(err).Msg("SMA20 calculation failed")
		return &Issue{Symbol: r.Symbol, Kind: IssueComputationFailed, Detail: err.Error()}
	}
	sma50, err := calculator.LatestSMA(r.History, calculator.LongWindow)
	if err != nil {
		log.Error().Str("symbol", r.Symbol).Err(err).Msg("SMA50 calculation failed")
		return &Issue{Symbol: r.Symbol, Kind: IssueComputationFailed, Detail: err.Error()}
	}

	r.SMA20, r.SMA50 = sma20, sma50
	r.Signal = strategy.Crossover(sma20, sma50)

	if n := len(r.History); n < calculator.LongWindow {
		log.Debug().Str("symbol", r.Symbol).Int("rows", n).Msg("history shorter than long window, signal unknown")
		return &Issue{Symbol: r.Symbol, Kind: IssueInsufficientHistory, Detail: fmt.Sprintf("%d of %d rows", n, calculator.LongWindow)}
	}
	return nil
}

func hasCloses(bars []model.OHLCV) bool {
	for _, b := range bars {
		if !math.IsNaN(b.Close) && !math.IsInf(b.Close, 0) {
			return true
		}
	}
	return false
}
