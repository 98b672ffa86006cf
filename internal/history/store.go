// Package history keeps a SQLite record of summarized runs so past summaries
// can be listed and inspected without the original CSV files.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/envsummary/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Run is one summarized input file.
type Run struct {
	ID               string
	InputPath        string
	OutputPath       string
	Seed             models.OptionalInt
	Args             map[string]string // Simulator parameters from the input header
	EnvironmentCount int
	RowsRead         int
	RowsSkipped      int
	CreatedAt        time.Time
	Environments     []*models.EnvironmentStats // Populated by RecordRun callers and GetEnvironments
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a run and its environments in one transaction.
// An empty ID is filled with a new UUID and a zero CreatedAt with the current time.
func (s *Store) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.EnvironmentCount = len(run.Environments)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, input_path, output_path, seed, environments, rows_read, rows_skipped, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.InputPath,
		run.OutputPath,
		nullInt(run.Seed),
		run.EnvironmentCount,
		run.RowsRead,
		run.RowsSkipped,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO environment_summaries
		(run_id, env, seed, initial_bd, final_bd, min_bd, max_bd, avg_bd, avg_fitness, num_gens, diff_bd, bd_jump)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare environment insert: %w", err)
	}
	defer stmt.Close()

	keys := make([]string, 0, len(run.Args))
	for key := range run.Args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		_, err := tx.ExecContext(ctx, `INSERT INTO run_args (run_id, key, value) VALUES (?, ?, ?)`,
			run.ID, key, run.Args[key])
		if err != nil {
			return fmt.Errorf("insert run arg %s: %w", key, err)
		}
	}

	for _, env := range run.Environments {
		_, err := stmt.ExecContext(ctx,
			run.ID,
			env.Env,
			nullInt(env.Seed),
			nullFloat(env.InitialBD),
			nullFloat(env.FinalBD),
			nullFloat(env.MinBD),
			nullFloat(env.MaxBD),
			env.AvgBD,
			env.AvgFitness,
			env.NumGens,
			nullFloat(env.DiffBD),
			nullFloat(env.BDJump),
		)
		if err != nil {
			return fmt.Errorf("insert environment %d: %w", env.Env, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, input_path, output_path, seed, environments, rows_read, rows_skipped, created_at`

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// GetRun returns one run and its header parameters, without its environments.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	run.Args, err = s.getArgs(ctx, id)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) getArgs(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM run_args WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run args: %w", err)
	}
	defer rows.Close()

	args := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan run arg: %w", err)
		}
		args[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run args: %w", err)
	}
	return args, nil
}

// GetEnvironments returns a run's environments ordered by env.
// Stored NULLs for diff_bd and bd_jump read back as N/A; other NULLs as unset.
func (s *Store) GetEnvironments(ctx context.Context, runID string) ([]*models.EnvironmentStats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT env, seed, initial_bd, final_bd, min_bd, max_bd, avg_bd, avg_fitness, num_gens, diff_bd, bd_jump
		FROM environment_summaries
		WHERE run_id = ?
		ORDER BY env`, runID)
	if err != nil {
		return nil, fmt.Errorf("query environments: %w", err)
	}
	defer rows.Close()

	var envs []*models.EnvironmentStats
	for rows.Next() {
		var (
			env                                            int
			seed                                           sql.NullInt64
			initialBD, finalBD, minBD, maxBD, diffBD, jump sql.NullFloat64
			stats                                          models.EnvironmentStats
		)
		err := rows.Scan(&env, &seed, &initialBD, &finalBD, &minBD, &maxBD,
			&stats.AvgBD, &stats.AvgFitness, &stats.NumGens, &diffBD, &jump)
		if err != nil {
			return nil, fmt.Errorf("scan environment row: %w", err)
		}

		stats.Env = env
		if seed.Valid {
			stats.Seed = models.Int(seed.Int64)
		}
		stats.InitialBD = optionalFloat(initialBD, models.OptionalFloat{})
		stats.FinalBD = optionalFloat(finalBD, models.OptionalFloat{})
		stats.MinBD = optionalFloat(minBD, models.OptionalFloat{})
		stats.MaxBD = optionalFloat(maxBD, models.OptionalFloat{})
		stats.DiffBD = optionalFloat(diffBD, models.NA())
		stats.BDJump = optionalFloat(jump, models.NA())

		envs = append(envs, &stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate environment rows: %w", err)
	}
	return envs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	run := &Run{}
	var seed sql.NullInt64
	err := sc.Scan(
		&run.ID,
		&run.InputPath,
		&run.OutputPath,
		&seed,
		&run.EnvironmentCount,
		&run.RowsRead,
		&run.RowsSkipped,
		&run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run row: %w", err)
	}
	if seed.Valid {
		run.Seed = models.Int(seed.Int64)
	}
	return run, nil
}

func nullInt(v models.OptionalInt) sql.NullInt64 {
	n, ok := v.Get()
	return sql.NullInt64{Int64: n, Valid: ok}
}

func nullFloat(v models.OptionalFloat) sql.NullFloat64 {
	f, ok := v.Get()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

func optionalFloat(v sql.NullFloat64, missing models.OptionalFloat) models.OptionalFloat {
	if !v.Valid {
		return missing
	}
	return models.Float(v.Float64)
}
