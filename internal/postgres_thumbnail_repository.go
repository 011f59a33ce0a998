package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
)

// rowQuerier is the slice of pgxpool.Pool the repositories need; pgxmock
// satisfies it in tests.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresThumbnailRepository reads the list-to-thumbnail mapping with pgx.
type PostgresThumbnailRepository struct {
	pool  rowQuerier
	query string
}

var _ listmeta.ThumbnailStore = (*PostgresThumbnailRepository)(nil)

// NewPostgresThumbnailRepository creates a repository over table, selecting
// pathColumn where listIDColumn matches.
func NewPostgresThumbnailRepository(pool rowQuerier, table, pathColumn, listIDColumn string) *PostgresThumbnailRepository {
	return &PostgresThumbnailRepository{
		pool:  pool,
		query: thumbnailQuery(table, pathColumn, listIDColumn, "$1"),
	}
}

func thumbnailQuery(table, pathColumn, listIDColumn, placeholder string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s LIMIT 1",
		sanitizeIdentifier(pathColumn),
		sanitizeIdentifier(table),
		sanitizeIdentifier(listIDColumn),
		placeholder,
	)
}

// ThumbnailPath implements listmeta.ThumbnailStore. A missing row or a NULL
// path is reported as ok=false.
func (r *PostgresThumbnailRepository) ThumbnailPath(ctx context.Context, listID int64) (string, bool, error) {
	var path *string
	err := r.pool.QueryRow(ctx, r.query, listID).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, listmeta.NewQueryError(listID, "select thumbnail", err)
	}
	if path == nil || *path == "" {
		return "", false, nil
	}
	return *path, true, nil
}
