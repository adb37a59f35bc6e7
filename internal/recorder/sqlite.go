package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"SectorPulse/internal/model"
	"SectorPulse/internal/strategy"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the API can read while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			cycle_id         TEXT PRIMARY KEY,
			started_at       INTEGER NOT NULL,
			analyzed_at      INTEGER NOT NULL,
			source           TEXT,
			fetched          INTEGER,
			failed           INTEGER,
			total_market_cap REAL,
			average_pe       REAL,
			market_breadth   REAL,
			buy_count        INTEGER,
			sell_count       INTEGER,
			unknown_count    INTEGER,
			issue_count      INTEGER,
			export_dir       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(analyzed_at)`,

		`CREATE TABLE IF NOT EXISTS symbol_metrics (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id         TEXT NOT NULL,
			analyzed_at      INTEGER NOT NULL,
			symbol           TEXT NOT NULL,
			company_name     TEXT,
			sector           TEXT,
			current_price    REAL,
			daily_change_pct REAL,
			pe_ratio         REAL,
			market_cap       REAL,
			volume           REAL,
			sector_pe        REAL,
			pe_vs_sector     REAL,
			sma_20           REAL,
			sma_50           REAL,
			signal           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbol_metrics_symbol ON symbol_metrics(symbol, analyzed_at)`,

		`CREATE TABLE IF NOT EXISTS sector_stats (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id         TEXT NOT NULL,
			sector           TEXT NOT NULL,
			companies        INTEGER,
			mean_pe          REAL,
			min_pe           REAL,
			max_pe           REAL,
			total_market_cap REAL,
			mean_change_pct  REAL,
			total_volume     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sector_stats_cycle ON sector_stats(cycle_id)`,

		`CREATE TABLE IF NOT EXISTS cycle_failures (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id   TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			source     TEXT,
			failed     INTEGER,
			reason     TEXT
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordCycle writes the snapshot, every symbol record and every sector
// aggregate of a cycle in one transaction.
func (r *SQLiteRecorder) RecordCycle(ctx context.Context, c *Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := c.Result
	snap := res.Snapshot
	analyzedAt := snap.AnalysisTimestamp.Unix()
	counts := strategy.CountSignals(res.Records)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshots
		(cycle_id, started_at, analyzed_at, source, fetched, failed,
		 total_market_cap, average_pe, market_breadth,
		 buy_count, sell_count, unknown_count, issue_count, export_dir)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		c.ID, c.StartedAt.Unix(), analyzedAt, c.Source, c.Fetched, c.Failed,
		snap.TotalMarketCap, snap.AveragePE, snap.MarketBreadth,
		counts[model.SignalBuy], counts[model.SignalSell], counts[model.SignalUnknown],
		len(res.Issues), c.ExportDir,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO symbol_metrics
		(cycle_id, analyzed_at, symbol, company_name, sector,
		 current_price, daily_change_pct, pe_ratio, market_cap, volume,
		 sector_pe, pe_vs_sector, sma_20, sma_50, signal)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer stmt.Close()
	for _, rec := range res.Records {
		if _, err := stmt.ExecContext(ctx,
			c.ID, analyzedAt, rec.Symbol, rec.CompanyName, rec.Sector,
			rec.CurrentPrice, rec.DailyChangePct, rec.PERatio, rec.MarketCap, rec.Volume,
			rec.SectorPE, rec.PEvsSector, rec.SMA20, rec.SMA50, string(rec.Signal),
		); err != nil {
			return fmt.Errorf("insert %s: %w", rec.Symbol, err)
		}
	}

	for _, s := range res.Sectors {
		if _, err := tx.ExecContext(ctx, `INSERT INTO sector_stats
			(cycle_id, sector, companies, mean_pe, min_pe, max_pe, total_market_cap, mean_change_pct, total_volume)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			c.ID, s.Sector, s.Count, s.MeanPE, s.MinPE, s.MaxPE,
			s.TotalMarketCap, s.MeanDailyChange, s.TotalVolume,
		); err != nil {
			return fmt.Errorf("insert sector %s: %w", s.Sector, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordFailure(ctx context.Context, evt *FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO cycle_failures
		(cycle_id, started_at, source, failed, reason)
		VALUES (?,?,?,?,?)`,
		evt.CycleID, evt.StartedAt.Unix(), evt.Source, evt.Failed, evt.Reason,
	)
	return err
}

// SignalHistory returns the most recent observations of symbol, newest first.
func (r *SQLiteRecorder) SignalHistory(ctx context.Context, symbol string, limit int) ([]SignalPoint, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, `SELECT cycle_id, analyzed_at, current_price, sma_20, sma_50, pe_vs_sector, signal
		FROM symbol_metrics WHERE symbol = ? COLLATE NOCASE ORDER BY analyzed_at DESC, id DESC LIMIT ?`,
		symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []SignalPoint
	for rows.Next() {
		var (
			p                             SignalPoint
			ts                            int64
			price, sma20, sma50, peVsSect sql.NullFloat64
			signal                        string
		)
		if err := rows.Scan(&p.CycleID, &ts, &price, &sma20, &sma50, &peVsSect, &signal); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		p.AnalyzedAt = time.Unix(ts, 0)
		p.Price = nullNum(price)
		p.SMA20 = nullNum(sma20)
		p.SMA50 = nullNum(sma50)
		p.PEvsSector = nullNum(peVsSect)
		p.Signal = model.Signal(signal)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func nullNum(v sql.NullFloat64) model.Num {
	if !v.Valid {
		return model.None()
	}
	return model.Some(v.Float64)
}
