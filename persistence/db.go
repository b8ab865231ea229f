// Package persistence provides an SQLite lineage archive of removed agents.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DeathRecord is one removed agent as stored in the archive.
type DeathRecord struct {
	RunID       string  `db:"run_id"`
	AgentID     uint32  `db:"agent_id"`
	ParentID    uint32  `db:"parent_id"`
	Tick        int     `db:"tick"`
	Cause       string  `db:"cause"`
	Age         int     `db:"age"`
	Offspring   int     `db:"offspring"`
	X           int     `db:"x"`
	Y           int     `db:"y"`
	ColorR      uint8   `db:"color_r"`
	ColorG      uint8   `db:"color_g"`
	ColorB      uint8   `db:"color_b"`
	FoodRadius  int     `db:"food_radius"`
	AgentRadius int     `db:"agent_radius"`
	Personality string  `db:"personality"`
	Meals       int     `db:"meals"`
	PeakEnergy  float64 `db:"peak_energy"`
}

// DB wraps a SQLite connection scoped to one simulation run.
type DB struct {
	conn  *sqlx.DB
	runID string
}

// Open opens or creates the archive at path and registers a new run.
func Open(path string, seed uint64) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn, runID: uuid.NewString()}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if _, err := conn.Exec(
		"INSERT INTO runs (run_id, seed, started_at) VALUES (?, ?, ?)",
		db.runID, int64(seed), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}

	slog.Info("archive opened", "path", path, "run_id", db.runID)
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// RunID returns the identifier of the current run.
func (db *DB) RunID() string {
	return db.runID
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		last_tick INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS deaths (
		run_id TEXT NOT NULL,
		agent_id INTEGER NOT NULL,
		parent_id INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		cause TEXT NOT NULL,
		age INTEGER NOT NULL,
		offspring INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		color_r INTEGER NOT NULL,
		color_g INTEGER NOT NULL,
		color_b INTEGER NOT NULL,
		food_radius INTEGER NOT NULL,
		agent_radius INTEGER NOT NULL,
		personality TEXT NOT NULL,
		meals INTEGER NOT NULL,
		peak_energy REAL NOT NULL,
		PRIMARY KEY (run_id, agent_id)
	);

	CREATE INDEX IF NOT EXISTS idx_deaths_cause ON deaths(run_id, cause);
	CREATE INDEX IF NOT EXISTS idx_deaths_parent ON deaths(run_id, parent_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordDeaths appends removed agents to the archive in one transaction.
// RunID is filled in from the current run.
func (db *DB) RecordDeaths(records []DeathRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(`INSERT INTO deaths
		(run_id, agent_id, parent_id, tick, cause, age, offspring, x, y,
		 color_r, color_g, color_b, food_radius, agent_radius, personality,
		 meals, peak_energy)
		VALUES (:run_id, :agent_id, :parent_id, :tick, :cause, :age, :offspring, :x, :y,
		 :color_r, :color_g, :color_b, :food_radius, :agent_radius, :personality,
		 :meals, :peak_energy)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range records {
		records[i].RunID = db.runID
		if _, err := stmt.Exec(records[i]); err != nil {
			return fmt.Errorf("insert agent %d: %w", records[i].AgentID, err)
		}
	}

	return tx.Commit()
}

// SaveTick stores the last tick reached by the run.
func (db *DB) SaveTick(tick int) error {
	_, err := db.conn.Exec("UPDATE runs SET last_tick = ? WHERE run_id = ?", tick, db.runID)
	return err
}

// CountByCause returns the number of archived deaths per cause for this run.
func (db *DB) CountByCause() (map[string]int, error) {
	var rows []struct {
		Cause string `db:"cause"`
		N     int    `db:"n"`
	}
	if err := db.conn.Select(&rows,
		"SELECT cause, COUNT(*) AS n FROM deaths WHERE run_id = ? GROUP BY cause",
		db.runID,
	); err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Cause] = r.N
	}
	return out, nil
}

// Ancestors returns the archived lineage of an agent, starting with the agent
// itself and following parent links while parents are archived.
func (db *DB) Ancestors(agentID uint32) ([]DeathRecord, error) {
	var out []DeathRecord
	err := db.conn.Select(&out, `
		WITH RECURSIVE lineage(agent_id, depth) AS (
			SELECT ?, 0
			UNION ALL
			SELECT d.parent_id, l.depth + 1
			FROM deaths d JOIN lineage l ON d.agent_id = l.agent_id
			WHERE d.run_id = ? AND d.parent_id != 0
		)
		SELECT d.* FROM deaths d JOIN lineage l ON d.agent_id = l.agent_id
		WHERE d.run_id = ?
		ORDER BY l.depth`,
		agentID, db.runID, db.runID,
	)
	return out, err
}
