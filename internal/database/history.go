package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/domaindive/internal/model"
)

// DBFileName is the name of the database file inside the data directory.
const DBFileName = "domaindive.db"

// HistoryDB stores analysis reports in SQLite.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT NOT NULL,
		analyzed_at TEXT NOT NULL,
		item_count INTEGER NOT NULL,
		failed_items INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyses_address ON analyses(address);
	CREATE INDEX IF NOT EXISTS idx_analyses_analyzed_at ON analyses(analyzed_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// ReportMetadata summarizes a stored report without decoding it.
type ReportMetadata struct {
	// ID is the database identifier of the report.
	ID int64 `json:"id"`

	// Address is the analyzed address.
	Address string `json:"address"`

	// Timestamp is when the analysis started.
	Timestamp time.Time `json:"timestamp"`

	// ItemCount is the number of analysis items.
	ItemCount int `json:"item_count"`

	// FailedItems is the number of items produced by failed analyzers.
	FailedItems int `json:"failed_items"`

	// ErrorCount is the number of dependencies that failed to fetch.
	ErrorCount int `json:"error_count"`
}

// SaveReport stores report and returns its ID.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.AnalysisReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO analyses (address, analyzed_at, item_count, failed_items, error_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := h.db.ExecContext(ctx, query,
		report.Address(),
		report.DateAnalyzed().UTC().Format(time.RFC3339Nano),
		len(report.Items()),
		report.FailedItems(),
		len(report.ErrorKeys()),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// LatestReport returns the most recently stored report for address.
func (h *HistoryDB) LatestReport(ctx context.Context, address string) (*model.AnalysisReport, error) {
	query := `
	SELECT report_json FROM analyses
	WHERE address = ?
	ORDER BY id DESC
	LIMIT 1
	`

	return h.queryReport(ctx, query, address)
}

// ReportByID returns the report stored under id.
func (h *HistoryDB) ReportByID(ctx context.Context, id int64) (*model.AnalysisReport, error) {
	return h.queryReport(ctx, `SELECT report_json FROM analyses WHERE id = ?`, id)
}

func (h *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.AnalysisReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// History returns the metadata of every stored report for address,
// newest first.
func (h *HistoryDB) History(ctx context.Context, address string) ([]ReportMetadata, error) {
	query := `
	SELECT id, address, analyzed_at, item_count, failed_items, error_count
	FROM analyses
	WHERE address = ?
	ORDER BY id DESC
	`

	return h.queryMetadata(ctx, query, address)
}

// RecentReports returns the metadata of the limit most recent reports
// across all addresses, newest first.
func (h *HistoryDB) RecentReports(ctx context.Context, limit int) ([]ReportMetadata, error) {
	if limit <= 0 {
		return []ReportMetadata{}, nil
	}

	query := `
	SELECT id, address, analyzed_at, item_count, failed_items, error_count
	FROM analyses
	ORDER BY id DESC
	LIMIT ?
	`

	return h.queryMetadata(ctx, query, limit)
}

func (h *HistoryDB) queryMetadata(ctx context.Context, query string, args ...any) ([]ReportMetadata, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	results := make([]ReportMetadata, 0)
	for rows.Next() {
		var meta ReportMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Address,
			&timestamp,
			&meta.ItemCount,
			&meta.FailedItems,
			&meta.ErrorCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListAddresses returns every address with at least one stored report,
// sorted.
func (h *HistoryDB) ListAddresses(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT address FROM analyses ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]string, 0)
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

// timestampFormats contains the timestamp formats a stored value may use.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses s with the first matching format, returning the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
