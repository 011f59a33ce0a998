package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/factory"
	"github.com/lychee-technology/listmeta/internal"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"
)

// Options contains program options that can be set via command-line flags or
// LISTMETA_* environment variables. Set options override the -config file.
type Options struct {
	ConfigFile      string
	Addr            string
	LogLevel        string
	DBDriver        string
	DBDSN           string
	DBHost          string
	DBPort          int
	DBName          string
	DBUser          string
	DBPassword      string
	DBUseIAM        bool
	DBRegion        string
	SiteRootURL     string
	SiteRootDir     string
	StripMarkup     bool
	EmitGenericTags bool
	AssetBackend    string
	S3Bucket        string
	S3Prefix        string
	S3Region        string
	S3Endpoint      string
}

func newFlagSet(opts *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("listmeta-server", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "config", "", "Path to a JSON config file applied over the defaults")
	fs.StringVar(&opts.Addr, "addr", "", "Address to listen on")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.DBDriver, "db-driver", "", "Database driver (pgx, postgres, duckdb)")
	fs.StringVar(&opts.DBDSN, "db-dsn", "", "DSN for the postgres and duckdb drivers")
	fs.StringVar(&opts.DBHost, "db-host", "", "Postgres host for the pgx driver")
	fs.IntVar(&opts.DBPort, "db-port", 0, "Postgres port for the pgx driver")
	fs.StringVar(&opts.DBName, "db-name", "", "Postgres database for the pgx driver")
	fs.StringVar(&opts.DBUser, "db-user", "", "Postgres user for the pgx driver")
	fs.StringVar(&opts.DBPassword, "db-password", "", "Postgres password for the pgx driver")
	fs.BoolVar(&opts.DBUseIAM, "db-use-iam", false, "Authenticate to Postgres with an IAM token")
	fs.StringVar(&opts.DBRegion, "db-region", "", "AWS region for IAM database auth")
	fs.StringVar(&opts.SiteRootURL, "site-root-url", "", "Public root URL that thumbnail paths are appended to")
	fs.StringVar(&opts.SiteRootDir, "site-root-dir", "", "Directory holding the site's files for the local asset backend")
	fs.BoolVar(&opts.StripMarkup, "strip-markup", true, "Strip HTML from titles and descriptions")
	fs.BoolVar(&opts.EmitGenericTags, "generic-tags", true, "Also write generic title/description/image tags")
	fs.StringVar(&opts.AssetBackend, "asset-backend", "", "Where thumbnails are checked (local, s3)")
	fs.StringVar(&opts.S3Bucket, "s3-bucket", "", "Asset bucket for the s3 backend")
	fs.StringVar(&opts.S3Prefix, "s3-prefix", "", "Key prefix for the s3 backend")
	fs.StringVar(&opts.S3Region, "s3-region", "", "Region for the s3 backend")
	fs.StringVar(&opts.S3Endpoint, "s3-endpoint", "", "Custom S3 endpoint (MinIO, RustFS)")
	return fs
}

// loadConfig parses args and the environment, loads the -config file and
// applies every explicitly set option on top of it.
func loadConfig(args []string) (*listmeta.Config, error) {
	var opts Options
	fs := newFlagSet(&opts)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("LISTMETA")); err != nil {
		return nil, err
	}

	cfg, err := listmeta.LoadConfig(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	overrides := map[string]func(){
		"addr":          func() { cfg.Server.Addr = opts.Addr },
		"log-level":     func() { cfg.Logging.Level = opts.LogLevel },
		"db-driver":     func() { cfg.Database.Driver = opts.DBDriver },
		"db-dsn":        func() { cfg.Database.DSN = opts.DBDSN },
		"db-host":       func() { cfg.Database.Host = opts.DBHost },
		"db-port":       func() { cfg.Database.Port = opts.DBPort },
		"db-name":       func() { cfg.Database.Database = opts.DBName },
		"db-user":       func() { cfg.Database.Username = opts.DBUser },
		"db-password":   func() { cfg.Database.Password = opts.DBPassword },
		"db-use-iam":    func() { cfg.Database.UseIAM = opts.DBUseIAM },
		"db-region":     func() { cfg.Database.Region = opts.DBRegion },
		"site-root-url": func() { cfg.Site.RootURL = opts.SiteRootURL },
		"site-root-dir": func() { cfg.Site.RootDir = opts.SiteRootDir },
		"strip-markup":  func() { cfg.Annotator.StripMarkup = opts.StripMarkup },
		"generic-tags":  func() { cfg.Annotator.EmitGenericTags = opts.EmitGenericTags },
		"asset-backend": func() { cfg.Assets.Backend = opts.AssetBackend },
		"s3-bucket":     func() { cfg.Assets.S3Bucket = opts.S3Bucket },
		"s3-prefix":     func() { cfg.Assets.S3Prefix = opts.S3Prefix },
		"s3-region":     func() { cfg.Assets.S3Region = opts.S3Region },
		"s3-endpoint":   func() { cfg.Assets.S3Endpoint = opts.S3Endpoint },
	}
	fs.Visit(func(f *flag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := internal.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool factory.DBPool
	if cfg.Database.Driver == listmeta.DriverPgx {
		p, err := factory.NewPool(ctx, cfg.Database)
		if err != nil {
			sugar.Fatalf("failed to create database pool: %v", err)
		}
		defer p.Close()
		pool = p
	}

	components, err := factory.NewWithConfig(ctx, cfg, pool)
	if err != nil {
		sugar.Fatalf("failed to build annotator: %v", err)
	}
	defer components.Close()
	if components.Lists == nil {
		sugar.Fatalf("database.tableNames.lists must be set to serve list pages")
	}

	server := NewServer(components.Annotator, components.Lists, components.Checks)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Warnw("server shutdown failed", "err", err)
		}
	}()

	sugar.Infow("starting server", "addr", cfg.Server.Addr, "driver", cfg.Database.Driver, "assets", cfg.Assets.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalf("server error: %v", err)
	}
}
