package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
)

func runInitDB(args []string) error {
	flags := newToolFlagSet("init-db")
	var opts dbOptions
	opts.register(flags)

	if err := parseToolFlags(flags, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx := context.Background()
	pool, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := withTx(ctx, pool, func(tx pgx.Tx) error {
		return ensureTables(ctx, tx, opts.db)
	}); err != nil {
		return err
	}

	fmt.Println("Database initialized successfully.")
	return nil
}

// ensureTables creates the list table (when configured) and the thumbnail
// mapping table. Both statements are idempotent.
func ensureTables(ctx context.Context, tx pgx.Tx, cfg listmeta.DatabaseConfig) error {
	for _, stmt := range tableDDL(cfg) {
		if _, err := tx.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("ensure %s table: %w", stmt.name, err)
		}
		fmt.Printf("Created %s table: %s\n", stmt.name, stmt.table)
	}
	return nil
}

type ddlStatement struct {
	name  string
	table string
	sql   string
}

func tableDDL(cfg listmeta.DatabaseConfig) []ddlStatement {
	var stmts []ddlStatement

	if cfg.TableNames.Lists != "" {
		stmts = append(stmts, ddlStatement{
			name:  "list",
			table: cfg.TableNames.Lists,
			sql: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id            BIGINT PRIMARY KEY,
		label         TEXT,
		introduction  TEXT
	)`, quoteIdentifier(cfg.TableNames.Lists)),
		})
	}

	stmts = append(stmts, ddlStatement{
		name:  "thumbnail",
		table: cfg.TableNames.Thumbnails,
		sql: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s  BIGINT PRIMARY KEY,
		%s  TEXT
	)`,
			quoteIdentifier(cfg.TableNames.Thumbnails),
			quoteIdentifier(cfg.Columns.ThumbnailListID),
			quoteIdentifier(cfg.Columns.ThumbnailPath),
		),
	})

	return stmts
}
