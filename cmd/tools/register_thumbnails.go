package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
	"go.uber.org/zap"
)

var thumbnailExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// thumbnailEntry maps a list id to a site-relative image path.
type thumbnailEntry struct {
	ListID int64
	Path   string
}

func runRegisterThumbnails(args []string) error {
	flags := newToolFlagSet("register-thumbnails")
	var opts dbOptions
	opts.register(flags)
	siteRoot := flags.String("site-root-dir", ".", "directory holding the site's files")
	dir := flags.String("dir", "images", "directory below -site-root-dir to scan for <id>.<ext> images")
	dryRun := flags.Bool("dry-run", false, "print the mappings without writing them")

	if err := parseToolFlags(flags, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	entries, err := scanThumbnails(*siteRoot, *dir)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Printf("No thumbnails found, dir: %s\n", filepath.Join(*siteRoot, *dir))
		return nil
	}
	if *dryRun {
		for _, e := range entries {
			fmt.Printf("%d -> %s\n", e.ListID, e.Path)
		}
		return nil
	}

	ctx := context.Background()
	pool, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return withTx(ctx, pool, func(tx pgx.Tx) error {
		return upsertThumbnails(ctx, tx, opts.db, entries)
	})
}

// scanThumbnails lists images named <id>.<ext> directly under siteRoot/dir.
// Paths are returned relative to siteRoot with forward slashes, sorted by id.
// When two files share an id the first in name order wins.
func scanThumbnails(siteRoot, dir string) ([]thumbnailEntry, error) {
	files, err := os.ReadDir(filepath.Join(siteRoot, dir))
	if err != nil {
		return nil, fmt.Errorf("read thumbnail directory(%s): %w", dir, err)
	}

	seen := make(map[int64]bool)
	var entries []thumbnailEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !thumbnailExtensions[ext] {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, filepath.Ext(name)), 10, 64)
		if err != nil || id <= 0 {
			zap.S().Debugw("skipping file without a list id", "file", name)
			continue
		}
		if seen[id] {
			zap.S().Warnw("duplicate thumbnail for list", "list_id", id, "file", name)
			continue
		}
		seen[id] = true
		entries = append(entries, thumbnailEntry{
			ListID: id,
			Path:   path.Join(filepath.ToSlash(filepath.Clean(dir)), name),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ListID < entries[j].ListID })
	return entries, nil
}

func upsertThumbnailSQL(cfg listmeta.DatabaseConfig) string {
	idCol := quoteIdentifier(cfg.Columns.ThumbnailListID)
	pathCol := quoteIdentifier(cfg.Columns.ThumbnailPath)
	return fmt.Sprintf(
		`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s`,
		quoteIdentifier(cfg.TableNames.Thumbnails), idCol, pathCol, idCol, pathCol, pathCol,
	)
}

func upsertThumbnails(ctx context.Context, tx pgx.Tx, cfg listmeta.DatabaseConfig, entries []thumbnailEntry) error {
	stmt := upsertThumbnailSQL(cfg)
	for _, e := range entries {
		if _, err := tx.Exec(ctx, stmt, e.ListID, e.Path); err != nil {
			return fmt.Errorf("register thumbnail for list %d: %w", e.ListID, err)
		}
		fmt.Printf("Registered thumbnail, list: %d, path: %s\n", e.ListID, e.Path)
	}
	fmt.Printf("Registered thumbnails, count: %d\n", len(entries))
	return nil
}
