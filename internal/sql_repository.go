package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/lib/pq"
	"github.com/lychee-technology/listmeta"
	"go.uber.org/zap"
)

// OpenSQLDB opens a database/sql handle for the postgres (lib/pq) or duckdb
// drivers and pings it. An empty duckdb DSN opens an in-memory database.
func OpenSQLDB(ctx context.Context, driver, dsn string, maxConns int) (*sql.DB, error) {
	switch driver {
	case listmeta.DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a dsn")
		}
	case listmeta.DriverDuckDB:
		if dsn == "" {
			dsn = ":memory:"
		}
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == listmeta.DriverDuckDB {
		// an in-memory duckdb database lives and dies with its connection
		db.SetMaxOpenConns(1)
	} else if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	zap.S().Infow("opened sql database", "driver", driver)
	return db, nil
}

// SQLThumbnailRepository reads the thumbnail mapping through database/sql.
type SQLThumbnailRepository struct {
	db    *sql.DB
	query string
}

var _ listmeta.ThumbnailStore = (*SQLThumbnailRepository)(nil)

// NewSQLThumbnailRepository creates a repository for db. Both supported
// drivers accept $1 placeholders.
func NewSQLThumbnailRepository(db *sql.DB, table, pathColumn, listIDColumn string) *SQLThumbnailRepository {
	return &SQLThumbnailRepository{
		db:    db,
		query: thumbnailQuery(table, pathColumn, listIDColumn, "$1"),
	}
}

// ThumbnailPath implements listmeta.ThumbnailStore.
func (r *SQLThumbnailRepository) ThumbnailPath(ctx context.Context, listID int64) (string, bool, error) {
	var path sql.NullString
	err := r.db.QueryRowContext(ctx, r.query, listID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, listmeta.NewQueryError(listID, "select thumbnail", err)
	}
	if !path.Valid || path.String == "" {
		return "", false, nil
	}
	return path.String, true, nil
}

// SQLListRepository loads list records through database/sql.
type SQLListRepository struct {
	db    *sql.DB
	query string
}

var _ listmeta.RecordStore = (*SQLListRepository)(nil)

func NewSQLListRepository(db *sql.DB, table string) *SQLListRepository {
	return &SQLListRepository{
		db: db,
		query: fmt.Sprintf("SELECT id, label, introduction FROM %s WHERE id = $1",
			sanitizeIdentifier(table)),
	}
}

// GetList implements listmeta.RecordStore.
func (r *SQLListRepository) GetList(ctx context.Context, id int64) (*listmeta.ListRecord, error) {
	var (
		record       listmeta.ListRecord
		label, intro sql.NullString
	)
	err := r.db.QueryRowContext(ctx, r.query, id).Scan(&record.ID, &label, &intro)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, listmeta.NewListNotFoundError(id)
	}
	if err != nil {
		return nil, listmeta.NewQueryError(id, "select list", err)
	}
	record.Label = label.String
	record.Introduction = intro.String
	return &record, nil
}
