// Package scheduler runs fetch cycles on a cron schedule and on demand, and
// answers chat commands from the latest result.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"SectorPulse/internal/analyzer"
	"SectorPulse/internal/collector"
	"SectorPulse/internal/export"
	"SectorPulse/internal/notifier"
	"SectorPulse/internal/recorder"
	"SectorPulse/internal/store"
	"SectorPulse/internal/telemetry"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrCycleRunning is returned by RunCycle when another cycle holds the lock.
var ErrCycleRunning = errors.New("fetch cycle already running")

const notifyRetries = 3

// Scheduler manages the fetch cycle.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Engine    *analyzer.Engine
	Exporter  *export.Writer
	Store     *store.Store
	Recorder  recorder.Recorder
	Notifier  notifier.Notifier
	Metrics   *telemetry.Metrics
	Ctx       context.Context

	running sync.Mutex
}

// NewScheduler creates a new Scheduler. Exporter may be nil to skip CSV output.
func NewScheduler(ctx context.Context, col *collector.Collector, eng *analyzer.Engine, exp *export.Writer,
	st *store.Store, rec recorder.Recorder, n notifier.Notifier, m *telemetry.Metrics) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		Collector: col,
		Engine:    eng,
		Exporter:  exp,
		Store:     st,
		Recorder:  rec,
		Notifier:  n,
		Metrics:   m,
		Ctx:       ctx,
	}
}

// Register adds the fetch cycle to the cron schedule.
func (s *Scheduler) Register(fetchCron string) error {
	if _, err := s.Cron.AddFunc(fetchCron, s.fetchTask); err != nil {
		return fmt.Errorf("register fetch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes a fetch cycle immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.fetchTask()
}

func (s *Scheduler) fetchTask() {
	if _, err := s.RunCycle(s.Ctx); err != nil && !errors.Is(err, ErrCycleRunning) {
		log.Error().Err(err).Msg("fetch cycle failed")
	}
}

// RunCycle collects the basket, computes the analysis and fans the result
// out to the export, recorder, store, metrics and notifier. Sink failures are
// logged and do not fail the cycle. An empty batch leaves the previous result
// in place.
func (s *Scheduler) RunCycle(ctx context.Context) (*analyzer.Result, error) {
	if !s.running.TryLock() {
		return nil, ErrCycleRunning
	}
	defer s.running.Unlock()

	id := uuid.NewString()
	start := time.Now()
	logger := log.With().Str("cycle_id", id).Logger()
	logger.Info().Str("source", s.Collector.Fetcher.Name()).Int("symbols", len(s.Collector.Symbols)).Msg("running fetch cycle")

	batch, err := s.Collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	s.Metrics.ObserveFetch(len(batch.Quotes), len(batch.Failed))

	res, err := s.Engine.Compute(batch.Quotes)
	if err != nil {
		s.fail(ctx, id, start, len(batch.Failed), err)
		return nil, err
	}

	for _, is := range res.Issues {
		logger.Debug().Str("symbol", is.Symbol).Str("kind", string(is.Kind)).Msg(is.Detail)
	}

	var dir string
	if s.Exporter != nil {
		if dir, err = s.Exporter.Write(res); err != nil {
			logger.Error().Err(err).Msg("export failed")
		}
	}

	if err := s.Recorder.RecordCycle(ctx, &recorder.Cycle{
		ID:        id,
		StartedAt: start,
		Source:    s.Collector.Fetcher.Name(),
		Fetched:   len(batch.Quotes),
		Failed:    len(batch.Failed),
		ExportDir: dir,
		Result:    res,
	}); err != nil {
		logger.Error().Err(err).Msg("record cycle")
	}

	s.Store.Update(id, res)
	s.Metrics.ObserveResult(res, time.Since(start))
	s.trySend(ctx, notifier.FormatOverview(res))

	logger.Info().
		Int("records", len(res.Records)).
		Int("issues", len(res.Issues)).
		Dur("took", time.Since(start)).
		Msg("fetch cycle finished")
	return res, nil
}

func (s *Scheduler) fail(ctx context.Context, id string, start time.Time, failed int, cause error) {
	log.Error().Err(cause).Str("cycle_id", id).Int("failed", failed).Msg("no analysis produced")
	s.Store.MarkFailure(cause)
	s.Metrics.ObserveFailure(time.Since(start))
	if err := s.Recorder.RecordFailure(ctx, &recorder.FailureEvent{
		CycleID:   id,
		StartedAt: start,
		Source:    s.Collector.Fetcher.Name(),
		Failed:    failed,
		Reason:    cause.Error(),
	}); err != nil {
		log.Error().Err(err).Msg("record failure")
	}
	s.trySend(ctx, notifier.FormatCycleFailure(cause, failed))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Commands in groups arrive as /overview@botname.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch name {
	case "/refresh":
		if _, err := s.RunCycle(ctx); err != nil {
			if errors.Is(err, ErrCycleRunning) {
				return "A fetch cycle is already running."
			}
			return fmt.Sprintf("Refresh failed: %v", err)
		}
		return ""
	case "/overview", "/signals", "/sectors":
	default:
		return notifier.FormatHelp()
	}

	res, _, ok := s.Store.Latest()
	if !ok {
		return "No analysis yet. Send /refresh to run a fetch cycle."
	}
	switch name {
	case "/overview":
		return notifier.FormatOverview(res)
	case "/signals":
		return notifier.FormatSignals(res.Records)
	default:
		return notifier.FormatSectors(res.Sectors, res.Records)
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Notifier.SendWithRetry(ctx, text, notifyRetries); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

// cronLogger adapts cron's logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
