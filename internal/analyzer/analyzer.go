// Package analyzer turns one fetch cycle's raw quotes into decorated symbol
// records, sector aggregates and a market snapshot.
//
// Compute is a pure, single-pass transformation: it performs no I/O, keeps no
// state between calls and never modifies the quotes it is given. Problems
// with a single symbol are recorded as Issues and never abort the batch; the
// only hard failure is an empty batch.
package analyzer

import (
	"errors"
	"slices"
	"strings"
	"time"

	"SectorPulse/internal/model"

	"github.com/rs/zerolog/log"
)

// ErrEmptyBatch is returned when Compute receives no quotes at all, which
// usually means the upstream fetch failed.
var ErrEmptyBatch = errors.New("analyzer: empty batch")

// TopN is the size of the top-gainers and most-active tables.
const TopN = 5

// IssueKind classifies a per-symbol problem.
type IssueKind string

const (
	IssueMissingHistory      IssueKind = "missing_history"
	IssueInsufficientHistory IssueKind = "insufficient_history"
	IssueComputationFailed   IssueKind = "computation_failed"
	IssueDuplicateSymbol     IssueKind = "duplicate_symbol"
)

// Issue records a problem with one symbol that did not stop the batch.
type Issue struct {
	Symbol string    `json:"symbol"`
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}

// Result is the output of one Compute call.
type Result struct {
	Records  []model.SymbolRecord `json:"records"`
	Snapshot model.MarketSnapshot `json:"snapshot"`
	Sectors  []model.SectorStats  `json:"sectors"`
	Issues   []Issue              `json:"issues,omitempty"`
}

// Record returns the record for symbol, if present.
func (r *Result) Record(symbol string) (model.SymbolRecord, bool) {
	for _, rec := range r.Records {
		if strings.EqualFold(rec.Symbol, symbol) {
			return rec, true
		}
	}
	return model.SymbolRecord{}, false
}

// Engine computes derived metrics. The zero value is not usable; use NewEngine.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for the snapshot timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute coerces the quotes into records, joins sector aggregates onto them,
// derives the moving averages and signal of each record, and summarizes the
// batch. Records keep the input order.
func (e *Engine) Compute(quotes []model.Quote) (*Result, error) {
	if len(quotes) == 0 {
		return nil, ErrEmptyBatch
	}

	res := &Result{}

	// Step A: coercion, one record per distinct symbol.
	records := make([]model.SymbolRecord, 0, len(quotes))
	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		key := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if _, dup := seen[key]; dup {
			res.Issues = append(res.Issues, Issue{Symbol: q.Symbol, Kind: IssueDuplicateSymbol, Detail: "symbol already present in batch, dropped"})
			log.Warn().Str("symbol", q.Symbol).Msg("duplicate symbol in batch, keeping first")
			continue
		}
		seen[key] = struct{}{}
		records = append(records, coerce(q))
	}

	// Step B: group -> reduce -> join.
	sectors := aggregateSectors(records)
	joinSectors(records, sectors)

	// Step C: per-record technicals, failures isolated.
	for i := range records {
		if issue := applyTechnicals(&records[i]); issue != nil {
			res.Issues = append(res.Issues, *issue)
		}
	}

	// Step D: snapshot.
	res.Records = records
	res.Sectors = sectors.sorted()
	res.Snapshot = buildSnapshot(e.now(), records, res.Sectors)
	return res, nil
}

func coerce(q model.Quote) model.SymbolRecord {
	sector := strings.TrimSpace(q.Sector)
	if sector == "" || strings.EqualFold(sector, "N/A") || strings.EqualFold(sector, model.UnknownSector) {
		sector = model.UnknownSector
	}
	return model.SymbolRecord{
		Symbol:         strings.TrimSpace(q.Symbol),
		CompanyName:    q.CompanyName,
		Sector:         sector,
		CurrentPrice:   model.ParseNum(q.CurrentPrice),
		DailyChangePct: model.ParseNum(q.DailyChangePct),
		PERatio:        model.ParseNum(q.PERatio),
		MarketCap:      model.ParseNum(q.MarketCap),
		Week52High:     model.ParseNum(q.Week52High),
		Week52Low:      model.ParseNum(q.Week52Low),
		Volume:         model.ParseNum(q.Volume),
		History:        slices.Clone(q.History),
		Signal:         model.SignalUnknown,
	}
}
