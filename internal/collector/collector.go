package collector

import (
	"context"
	"errors"
	"sync"

	"SectorPulse/internal/model"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Batch is the outcome of one collection pass.
type Batch struct {
	Quotes []model.Quote
	Failed []string
}

// Collector fetches quotes for a basket of symbols through a Fetcher, with a
// bounded number of workers sharing one rate limit.
type Collector struct {
	Fetcher Fetcher
	Symbols []string
	Workers int
	Limiter *rate.Limiter
}

// NewCollector creates a new Collector. A non-positive rps disables rate
// limiting; fewer than one worker is treated as one.
func NewCollector(fetcher Fetcher, symbols []string, workers int, rps float64) *Collector {
	if workers < 1 {
		workers = 1
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Collector{
		Fetcher: fetcher,
		Symbols: symbols,
		Workers: workers,
		Limiter: rate.NewLimiter(limit, 1),
	}
}

// Collect fetches every symbol. Symbols that fail are logged and left out of
// the batch; quotes keep the basket order. The only error returned is the
// context's.
func (c *Collector) Collect(ctx context.Context) (*Batch, error) {
	type slot struct {
		quote model.Quote
		err   error
	}
	slots := make([]slot, len(c.Symbols))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < min(c.Workers, max(len(c.Symbols), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := c.Limiter.Wait(ctx); err != nil {
					slots[i].err = err
					continue
				}
				slots[i].quote, slots[i].err = c.Fetcher.FetchQuote(ctx, c.Symbols[i])
			}
		}()
	}

feed:
	for i := range c.Symbols {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(c.Symbols); j++ {
				slots[j].err = ctx.Err()
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &Batch{Quotes: make([]model.Quote, 0, len(c.Symbols))}
	for i, s := range slots {
		if s.err != nil {
			batch.Failed = append(batch.Failed, c.Symbols[i])
			ev := log.Warn()
			if errors.Is(s.err, ErrNoHistory) {
				ev = log.Info()
			}
			ev.Err(s.err).Str("symbol", c.Symbols[i]).Str("source", c.Fetcher.Name()).Msg("symbol skipped")
			continue
		}
		batch.Quotes = append(batch.Quotes, s.quote)
	}
	log.Info().Int("fetched", len(batch.Quotes)).Int("failed", len(batch.Failed)).Msg("collection finished")
	return batch, nil
}
