package internal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
)

// PostgresListRepository loads list records with pgx.
type PostgresListRepository struct {
	pool  rowQuerier
	query string
}

var _ listmeta.RecordStore = (*PostgresListRepository)(nil)

func NewPostgresListRepository(pool rowQuerier, table string) *PostgresListRepository {
	return &PostgresListRepository{
		pool: pool,
		query: fmt.Sprintf("SELECT id, label, introduction FROM %s WHERE id = $1",
			sanitizeIdentifier(table)),
	}
}

// GetList implements listmeta.RecordStore. NULL label or introduction is read
// as an empty string.
func (r *PostgresListRepository) GetList(ctx context.Context, id int64) (*listmeta.ListRecord, error) {
	var (
		record       listmeta.ListRecord
		label, intro *string
	)
	err := r.pool.QueryRow(ctx, r.query, id).Scan(&record.ID, &label, &intro)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, listmeta.NewListNotFoundError(id)
	}
	if err != nil {
		return nil, listmeta.NewQueryError(id, "select list", err)
	}
	if label != nil {
		record.Label = *label
	}
	if intro != nil {
		record.Introduction = *intro
	}
	return &record, nil
}
