package analyzer

import (
	"sort"

	"SectorPulse/internal/model"
)

// sectorAcc accumulates one sector while records are grouped.
type sectorAcc struct {
	stats model.SectorStats

	peSum, capSum, chgSum float64
	peN, capN, chgN       int
}

type sectorTable map[string]*sectorAcc

func aggregateSectors(records []model.SymbolRecord) sectorTable {
	table := make(sectorTable)
	for _, r := range records {
		acc, ok := table[r.Sector]
		if !ok {
			acc = &sectorAcc{stats: model.SectorStats{Sector: r.Sector}}
			table[r.Sector] = acc
		}
		acc.add(r)
	}
	for _, acc := range table {
		acc.finish()
	}
	return table
}

func (a *sectorAcc) add(r model.SymbolRecord) {
	s := &a.stats
	s.Count++
	if r.PERatio.Valid {
		a.peSum += r.PERatio.Float64
		a.peN++
		s.MinPE = minNum(s.MinPE, r.PERatio.Float64)
		s.MaxPE = maxNum(s.MaxPE, r.PERatio.Float64)
	}
	if r.MarketCap.Valid {
		a.capSum += r.MarketCap.Float64
		a.capN++
	}
	if r.Volume.Valid {
		s.TotalVolume += r.Volume.Float64
	}
	if r.DailyChangePct.Valid {
		a.chgSum += r.DailyChangePct.Float64
		a.chgN++
		s.MinDailyChange = minNum(s.MinDailyChange, r.DailyChangePct.Float64)
		s.MaxDailyChange = maxNum(s.MaxDailyChange, r.DailyChangePct.Float64)
	}
}

func (a *sectorAcc) finish() {
	a.stats.MeanPE = mean(a.peSum, a.peN)
	a.stats.TotalMarketCap = a.capSum
	a.stats.MeanMarketCap = mean(a.capSum, a.capN)
	a.stats.MeanDailyChange = mean(a.chgSum, a.chgN)
}

func (t sectorTable) sorted() []model.SectorStats {
	out := make([]model.SectorStats, 0, len(t))
	for _, acc := range t {
		out = append(out, acc.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sector < out[j].Sector })
	return out
}

// joinSectors broadcasts each sector's mean P/E back onto its records.
func joinSectors(records []model.SymbolRecord, table sectorTable) {
	for i := range records {
		r := &records[i]
		acc, ok := table[r.Sector]
		if !ok {
			continue
		}
		r.SectorPE = acc.stats.MeanPE
		r.PEvsSector = ratio(r.PERatio, r.SectorPE)
	}
}

// ratio divides a by b, absent when either side is absent or b is zero.
func ratio(a, b model.Num) model.Num {
	if !a.Valid || !b.Valid || b.Float64 == 0 {
		return model.None()
	}
	return model.Some(a.Float64 / b.Float64)
}

func mean(sum float64, n int) model.Num {
	if n == 0 {
		return model.None()
	}
	return model.Some(sum / float64(n))
}

func minNum(cur model.Num, v float64) model.Num {
	if !cur.Valid || v < cur.Float64 {
		return model.Some(v)
	}
	return cur
}

func maxNum(cur model.Num, v float64) model.Num {
	if !cur.Valid || v > cur.Float64 {
		return model.Some(v)
	}
	return cur
}
