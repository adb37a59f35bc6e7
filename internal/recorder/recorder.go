package recorder

import (
	"context"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/model"
)

// Cycle holds everything persisted for one successful fetch cycle.
type Cycle struct {
	ID        string
	StartedAt time.Time
	Source    string
	Fetched   int
	Failed    int
	ExportDir string
	Result    *analyzer.Result
}

// FailureEvent records a fetch cycle that produced no analysis.
type FailureEvent struct {
	CycleID   string
	StartedAt time.Time
	Source    string
	Failed    int
	Reason    string
}

// SignalPoint is one recorded observation of a symbol.
type SignalPoint struct {
	CycleID    string       `json:"cycle_id"`
	AnalyzedAt time.Time    `json:"analyzed_at"`
	Price      model.Num    `json:"price"`
	SMA20      model.Num    `json:"sma_20"`
	SMA50      model.Num    `json:"sma_50"`
	PEvsSector model.Num    `json:"pe_vs_sector"`
	Signal     model.Signal `json:"signal"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordCycle(ctx context.Context, c *Cycle) error
	RecordFailure(ctx context.Context, evt *FailureEvent) error
	SignalHistory(ctx context.Context, symbol string, limit int) ([]SignalPoint, error)
	Close() error
}
