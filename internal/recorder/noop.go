package recorder

import "context"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(context.Context, *Cycle) error          { return nil }
func (n *NoopRecorder) RecordFailure(context.Context, *FailureEvent) error { return nil }
func (n *NoopRecorder) SignalHistory(context.Context, string, int) ([]SignalPoint, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
