package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/onionharvest/internal/model"
)

// dbFileName is the SQLite file name inside the data directory.
const dbFileName = "onionharvest.db"

// CrawlDB provides SQLite-based storage for crawl history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all crawl runs
// rather than one file per run. This keeps history listing a single
// query and makes backup/restore a one-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per completed crawl session
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT,
		seeds TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		record_count INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Records store the extracted content units of each run
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		link TEXT,
		tag TEXT NOT NULL,
		source TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	CREATE INDEX IF NOT EXISTS idx_records_source ON records(source);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// RunMetadata contains summary information about a stored crawl run.
// This is used for displaying history without loading the records.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Query is the directory search query, empty for explicit seeds.
	Query string

	// Seeds are the starting locations of the run.
	Seeds []string

	// PagesVisited is the number of frontier entries processed.
	PagesVisited int

	// RecordCount is the number of records stored for the run.
	RecordCount int

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time
}

// SaveSession stores a completed crawl session and returns its run ID.
// The run row and its records are written in one transaction, so a
// failure never leaves a run without its records.
func (cdb *CrawlDB) SaveSession(ctx context.Context, session *model.Session) (int64, error) {
	seedsJSON, err := json.Marshal(session.Seeds)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize seeds: %w", err)
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx, `
	INSERT INTO runs (query, seeds, pages_visited, record_count, started_at, finished_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		session.Query,
		string(seedsJSON),
		session.PagesVisited,
		len(session.Records),
		session.StartedAt.UTC().Format(time.RFC3339),
		session.FinishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, r := range session.Records {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO records (run_id, text, link, tag, source)
		VALUES (?, ?, ?, ?, ?)
		`, runID, r.Text, r.Link, r.Tag, r.Source); err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	return runID, nil
}

// ListRuns returns metadata for stored runs, newest first, up to limit.
// A limit of zero or less returns all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]RunMetadata, error) {
	query := `
	SELECT id, query, seeds, pages_visited, record_count, started_at, finished_at
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var seedsJSON string
		var started, finished string

		if err := rows.Scan(&meta.ID, &meta.Query, &seedsJSON, &meta.PagesVisited,
			&meta.RecordCount, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if err := json.Unmarshal([]byte(seedsJSON), &meta.Seeds); err != nil {
			meta.Seeds = nil
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)

		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRecords returns the stored records of a run in insertion order.
func (cdb *CrawlDB) GetRecords(ctx context.Context, runID int64) ([]model.Record, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT text, link, tag, source FROM records
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var r model.Record
		var link sql.NullString
		if err := rows.Scan(&r.Text, &link, &r.Tag, &r.Source); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Link = link.String
		records = append(records, r)
	}

	return records, rows.Err()
}

// GetSession reconstructs a stored run as a session.
// Returns nil without error when the run does not exist.
func (cdb *CrawlDB) GetSession(ctx context.Context, runID int64) (*model.Session, error) {
	var meta RunMetadata
	var seedsJSON string
	var started, finished string

	err := cdb.db.QueryRowContext(ctx, `
	SELECT id, query, seeds, pages_visited, started_at, finished_at
	FROM runs WHERE id = ?
	`, runID).Scan(&meta.ID, &meta.Query, &seedsJSON, &meta.PagesVisited, &started, &finished)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var seeds []string
	if err := json.Unmarshal([]byte(seedsJSON), &seeds); err != nil {
		seeds = nil
	}

	records, err := cdb.GetRecords(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		Query:        meta.Query,
		Seeds:        seeds,
		Records:      records,
		PagesVisited: meta.PagesVisited,
		StartedAt:    parseTimestamp(started),
		FinishedAt:   parseTimestamp(finished),
	}, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
