package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/factory"
	"github.com/peterbourgon/ff/v3"
)

// dbOptions are the connection and table flags shared by the commands that
// touch Postgres.
type dbOptions struct {
	db listmeta.DatabaseConfig
}

func newToolFlagSet(name string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Printf("Usage: listmeta-tools %s [options]\n", name)
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}
	return flags
}

func (o *dbOptions) register(flags *flag.FlagSet) {
	o.db = listmeta.DefaultConfig().Database
	o.db.Password = "postgres"
	flags.StringVar(&o.db.Host, "db-host", o.db.Host, "database host")
	flags.IntVar(&o.db.Port, "db-port", o.db.Port, "database port")
	flags.StringVar(&o.db.Database, "db-name", o.db.Database, "database name")
	flags.StringVar(&o.db.Username, "db-user", o.db.Username, "database user")
	flags.StringVar(&o.db.Password, "db-password", o.db.Password, "database password")
	flags.StringVar(&o.db.SSLMode, "db-ssl-mode", o.db.SSLMode, "database sslmode")
	flags.BoolVar(&o.db.UseIAM, "db-use-iam", o.db.UseIAM, "authenticate with an IAM token")
	flags.StringVar(&o.db.Region, "db-region", o.db.Region, "AWS region for IAM auth")
	flags.StringVar(&o.db.TableNames.Lists, "lists-table", o.db.TableNames.Lists, "list table name")
	flags.StringVar(&o.db.TableNames.Thumbnails, "thumbnails-table", o.db.TableNames.Thumbnails, "thumbnail mapping table name")
	flags.StringVar(&o.db.Columns.ThumbnailPath, "thumbnail-path-column", o.db.Columns.ThumbnailPath, "thumbnail path column")
	flags.StringVar(&o.db.Columns.ThumbnailListID, "thumbnail-list-id-column", o.db.Columns.ThumbnailListID, "thumbnail list id column")
}

// parseToolFlags parses args and LISTMETA_* environment variables.
func parseToolFlags(flags *flag.FlagSet, args []string) error {
	return ff.Parse(flags, args, ff.WithEnvVarPrefix("LISTMETA"))
}

func (o *dbOptions) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return factory.NewPool(ctx, o.db)
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

func withTx(ctx context.Context, db txBeginner, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func quoteIdentifier(name string) string {
	return pgx.Identifier(splitIdentifier(name)).Sanitize()
}

func splitIdentifier(name string) []string {
	parts := strings.Split(name, ".")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return []string{name}
	}
	return result
}
