// Package persistence provides the SQLite run journal: one row per process
// run, the event stream of that run, and periodic census snapshots.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/curious-world/internal/agents"
	"github.com/talgya/curious-world/internal/config"
	"github.com/talgya/curious-world/internal/engine"
)

// ErrNoRun is returned by writes made before StartRun.
var ErrNoRun = errors.New("journal: no run started")

// Journal wraps a SQLite connection that records what a run observed. It is
// write-mostly; nothing in the simulation reads it back.
type Journal struct {
	conn  *sqlx.DB
	runID string
}

var _ engine.EventSink = (*Journal)(nil)

// Open opens or creates a journal database at the given path.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		config_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		level INTEGER NOT NULL,
		category TEXT NOT NULL,
		entity INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tick_stats (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		active INTEGER NOT NULL,
		sleeping INTEGER NOT NULL,
		corpses INTEGER NOT NULL,
		herbivores INTEGER NOT NULL,
		carnivores INTEGER NOT NULL,
		omnivores INTEGER NOT NULL,
		births INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		food INTEGER NOT NULL,
		water INTEGER NOT NULL,
		chunks INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// Run is one recorded process run.
type Run struct {
	ID        string `db:"id" json:"id"`
	Seed      int64  `db:"seed" json:"seed"`
	StartedAt string `db:"started_at" json:"started_at"`
	Config    string `db:"config_json" json:"config"`
}

// StartRun opens a new run row; later writes are scoped to it.
func (j *Journal) StartRun(seed int64, cfg config.Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	id := uuid.NewString()
	_, err = j.conn.Exec(
		"INSERT INTO runs (id, seed, started_at, config_json) VALUES (?, ?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339), string(cfgJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	j.runID = id
	slog.Info("journal run started", "run", id, "seed", seed)
	return id, nil
}

// RunID returns the current run, or "" before StartRun.
func (j *Journal) RunID() string {
	return j.runID
}

// Runs lists every recorded run, newest first.
func (j *Journal) Runs() ([]Run, error) {
	var runs []Run
	err := j.conn.Select(&runs, "SELECT id, seed, started_at, config_json FROM runs ORDER BY rowid DESC")
	return runs, err
}

// Append writes a tick's events to the current run.
func (j *Journal) Append(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if j.runID == "" {
		return ErrNoRun
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(run_id, tick, level, category, entity, description)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(j.runID, int64(e.Tick), int(e.Level), e.Category, int64(e.Entity), e.Description); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

type eventRow struct {
	Tick        int64  `db:"tick"`
	Level       int    `db:"level"`
	Category    string `db:"category"`
	Entity      int64  `db:"entity"`
	Description string `db:"description"`
}

// RecentEvents returns the most recent events of the current run, newest
// first. category filters when non-empty.
func (j *Journal) RecentEvents(limit int, category string) ([]engine.Event, error) {
	var rows []eventRow
	query := "SELECT tick, level, category, entity, description FROM events WHERE run_id = ?"
	args := []any{j.runID}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	if err := j.conn.Select(&rows, query, args...); err != nil {
		return nil, err
	}
	events := make([]engine.Event, len(rows))
	for i, r := range rows {
		events[i] = engine.Event{
			Tick:        uint64(r.Tick),
			Level:       slog.Level(r.Level),
			Category:    r.Category,
			Entity:      agents.EntityID(r.Entity),
			Description: r.Description,
		}
	}
	return events, nil
}

// StatsRow is one census snapshot.
type StatsRow struct {
	Tick       int64 `db:"tick" json:"tick"`
	Active     int   `db:"active" json:"active"`
	Sleeping   int   `db:"sleeping" json:"sleeping"`
	Corpses    int   `db:"corpses" json:"corpses"`
	Herbivores int   `db:"herbivores" json:"herbivores"`
	Carnivores int   `db:"carnivores" json:"carnivores"`
	Omnivores  int   `db:"omnivores" json:"omnivores"`
	Births     int   `db:"births" json:"births"`
	Deaths     int   `db:"deaths" json:"deaths"`
	Food       int64 `db:"food" json:"food"`
	Water      int64 `db:"water" json:"water"`
	Chunks     int   `db:"chunks" json:"chunks"`
}

// SaveStats records the census at tick. Saving the same tick twice keeps the
// latest numbers.
func (j *Journal) SaveStats(tick uint64, st engine.SimStats) error {
	if j.runID == "" {
		return ErrNoRun
	}
	_, err := j.conn.Exec(`INSERT OR REPLACE INTO tick_stats
		(run_id, tick, active, sleeping, corpses, herbivores, carnivores, omnivores,
		 births, deaths, food, water, chunks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, int64(tick), st.Active, st.Sleeping, st.Corpses,
		st.Population[agents.Herbivore.String()],
		st.Population[agents.Carnivore.String()],
		st.Population[agents.Omnivore.String()],
		st.Births, st.Deaths, int64(st.Food), int64(st.Water), st.Chunks,
	)
	if err != nil {
		return fmt.Errorf("save stats at tick %d: %w", tick, err)
	}
	return nil
}

// StatsHistory returns up to limit of the latest snapshots of the current
// run in tick order.
func (j *Journal) StatsHistory(limit int) ([]StatsRow, error) {
	var rows []StatsRow
	err := j.conn.Select(&rows, `SELECT * FROM (
		SELECT tick, active, sleeping, corpses, herbivores, carnivores, omnivores,
		       births, deaths, food, water, chunks
		FROM tick_stats WHERE run_id = ? ORDER BY tick DESC LIMIT ?
	) ORDER BY tick ASC`, j.runID, limit)
	return rows, err
}
