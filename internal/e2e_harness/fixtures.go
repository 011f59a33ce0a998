package e2e_harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/internal"
)

// SeedList is one list row plus its optional thumbnail mapping.
type SeedList struct {
	ID           int64
	Label        string
	Introduction string
	Thumbnail    string
}

// DefaultSeed covers the interesting cases: an uploaded thumbnail, a mapping
// whose object was never uploaded, and a list without a mapping.
var DefaultSeed = []SeedList{
	{ID: 5, Label: "Sales Q1", Introduction: "<b>Summary</b>", Thumbnail: "/images/5.png"},
	{ID: 6, Label: "Inventory", Introduction: "Stock levels", Thumbnail: "images/6.png"},
	{ID: 7, Label: "Contacts", Introduction: "All contacts"},
}

// SeedPostgres creates the list and thumbnail tables named in tables and
// inserts lists.
func SeedPostgres(ctx context.Context, pool *pgxpool.Pool, tables listmeta.TableNames, cols listmeta.ColumnNames, lists []SeedList) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id BIGINT PRIMARY KEY,
  label TEXT,
  introduction TEXT
);`, tables.Lists),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  %s BIGINT PRIMARY KEY,
  %s TEXT
);`, tables.Thumbnails, cols.ThumbnailListID, cols.ThumbnailPath),
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, l := range lists {
		if _, err := pool.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (id, label, introduction) VALUES ($1, $2, $3)`, tables.Lists),
			l.ID, l.Label, l.Introduction); err != nil {
			return fmt.Errorf("insert list %d: %w", l.ID, err)
		}
		if l.Thumbnail == "" {
			continue
		}
		if _, err := pool.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, tables.Thumbnails, cols.ThumbnailListID, cols.ThumbnailPath),
			l.ID, l.Thumbnail); err != nil {
			return fmt.Errorf("insert thumbnail %d: %w", l.ID, err)
		}
	}
	return nil
}

// UploadThumbnails creates the asset bucket and uploads a placeholder image
// for each relPath.
func UploadThumbnails(ctx context.Context, cfg listmeta.AssetsConfig, relPaths ...string) error {
	client, err := internal.NewS3Client(ctx, cfg)
	if err != nil {
		return err
	}
	if err := internal.EnsureBucket(ctx, client, cfg.S3Bucket); err != nil {
		return err
	}
	uploader := internal.NewThumbnailUploader(client, cfg.S3Bucket, cfg.S3Prefix)
	for _, rel := range relPaths {
		if _, err := uploader.Upload(ctx, rel, strings.NewReader("png")); err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}
	}
	return nil
}
