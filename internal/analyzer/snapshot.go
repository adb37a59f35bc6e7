package analyzer

import (
	"slices"
	"sort"
	"time"

	"SectorPulse/internal/model"
)

func buildSnapshot(at time.Time, records []model.SymbolRecord, sectors []model.SectorStats) model.MarketSnapshot {
	var capSum, peSum float64
	var peN int
	for _, r := range records {
		if r.MarketCap.Valid {
			capSum += r.MarketCap.Float64
		}
		if r.PERatio.Valid {
			peSum += r.PERatio.Float64
			peN++
		}
	}

	dist := make(map[string]float64, len(sectors))
	for _, s := range sectors {
		dist[s.Sector] = s.TotalMarketCap
	}

	return model.MarketSnapshot{
		AnalysisTimestamp:  at,
		TotalMarketCap:     capSum,
		AveragePE:          mean(peSum, peN),
		MarketBreadth:      Breadth(records),
		TopGainers:         topBy(records, func(r model.SymbolRecord) model.Num { return r.DailyChangePct }),
		MostActive:         topBy(records, func(r model.SymbolRecord) model.Num { return r.Volume }),
		SectorDistribution: dist,
	}
}

// Breadth is the fraction of records with a positive daily change, 0 for an
// empty set.
func Breadth(records []model.SymbolRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	up := 0
	for _, r := range records {
		if r.DailyChangePct.Valid && r.DailyChangePct.Float64 > 0 {
			up++
		}
	}
	return float64(up) / float64(len(records))
}

// topBy returns deep copies of the TopN records ranked descending by key. Ties keep
// input order and absent keys rank after every present one.
func topBy(records []model.SymbolRecord, key func(model.SymbolRecord) model.Num) []model.SymbolRecord {
	idx := make([]int, len(records))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(records[idx[a]]), key(records[idx[b]])
		switch {
		case ka.Valid && !kb.Valid:
			return true
		case !ka.Valid:
			return false
		default:
			return ka.Float64 > kb.Float64
		}
	})
	n := min(TopN, len(idx))
	out := make([]model.SymbolRecord, n)
	for i := 0; i < n; i++ {
		out[i] = records[idx[i]]
		out[i].History = slices.Clone(out[i].History)
	}
	return out
}
