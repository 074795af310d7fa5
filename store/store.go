package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"showroom-etl/internal/metrics"
	"showroom-etl/internal/types"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Columns is the exact column order of a showroom table
var Columns = []string{
	"product_id",
	"product_name",
	"product_price",
	"scrapy_datetime",
	"style_id",
	"color_id",
	"color_name",
	"fit",
	"more_sustainable_materials",
	"size_number",
	"size_model",
	"cotton",
	"polyester",
	"elastane",
	"elasterell",
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	product_id TEXT,
	product_name TEXT,
	product_price DOUBLE PRECISION,
	scrapy_datetime TEXT,
	style_id TEXT,
	color_id TEXT,
	color_name TEXT,
	fit TEXT,
	more_sustainable_materials TEXT,
	size_number INTEGER,
	size_model TEXT,
	cotton DOUBLE PRECISION,
	polyester DOUBLE PRECISION,
	elastane DOUBLE PRECISION,
	elasterell DOUBLE PRECISION
)`

// SQLStore appends clean rows to a table per showroom. Rows are never
// updated; re-scraped products accumulate.
type SQLStore struct {
	db      *sql.DB
	dialect string
	logger  types.Logger
}

// Open connects to databaseURL. postgres:// URLs use Postgres; anything
// else is a SQLite file path, optionally prefixed with sqlite://.
func Open(databaseURL string, logger types.Logger) (*SQLStore, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		db, err := sql.Open("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		return New(db, DialectPostgres, logger), nil
	}

	path := strings.TrimPrefix(databaseURL, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// one writer at a time; also keeps :memory: on a single connection
	db.SetMaxOpenConns(1)
	return New(db, DialectSQLite, logger), nil
}

// New wraps an open database
func New(db *sql.DB, dialect string, logger types.Logger) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, logger: logger}
}

// EnsureTable creates the showroom table if it does not exist
func (s *SQLStore) EnsureTable(ctx context.Context, showroom string) error {
	if !tableNameRe.MatchString(showroom) {
		return fmt.Errorf("invalid showroom table name %q", showroom)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(createTableSQL, showroom)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", showroom, err)
	}
	return nil
}

// Append inserts records into the showroom table in one transaction
func (s *SQLStore) Append(ctx context.Context, showroom string, records []types.CleanRecord) (int, error) {
	if err := s.EnsureTable(ctx, showroom); err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(showroom))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var sizeNumber sql.NullInt64
		if r.SizeNumber != nil {
			sizeNumber = sql.NullInt64{Int64: int64(*r.SizeNumber), Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			r.ProductID,
			r.Name,
			r.Price,
			r.ScrapeTime,
			r.StyleID,
			r.ColorID,
			nullString(r.ColorName),
			nullString(r.Fit),
			nullString(r.MoreSustainableMaterials),
			sizeNumber,
			nullString(r.SizeModel),
			r.Cotton,
			r.Polyester,
			r.Elastane,
			r.Elasterell,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert product %s: %w", r.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	metrics.RowsStored.WithLabelValues(showroom).Add(float64(len(records)))
	s.logger.Infof("Appended %d rows to %s", len(records), showroom)
	return len(records), nil
}

func (s *SQLStore) insertSQL(showroom string) string {
	placeholders := make([]string, len(Columns))
	for i := range Columns {
		if s.dialect == DialectPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		showroom, strings.Join(Columns, ", "), strings.Join(placeholders, ", "))
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
