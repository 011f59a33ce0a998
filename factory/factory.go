package factory

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dsql/auth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/internal"
	"go.uber.org/zap"
)

// DBPool is the subset of *pgxpool.Pool the stores use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Components bundles what a host needs to annotate list pages.
type Components struct {
	Annotator listmeta.MetadataAnnotator
	Lists     listmeta.RecordStore
	// Thumbnails is the lookup store the annotator uses, breaker included.
	Thumbnails listmeta.ThumbnailStore
	Assets     listmeta.AssetChecker
	// Checks are keyed by dependency name ("database", "assets").
	Checks map[string]HealthCheck

	closers []func()
}

// Close releases connections opened by the factory. A pool passed in by the
// caller is left open.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// NewWithConfig wires the stores, the asset checker and the annotator from
// config. pool is required for the pgx driver and ignored otherwise.
//
// Usage:
//
//	cfg := listmeta.DefaultConfig()
//	pool, err := factory.NewPool(ctx, cfg.Database)
//	if err != nil {
//	    // handle error
//	}
//	components, err := factory.NewWithConfig(ctx, cfg, pool)
//	if err != nil {
//	    // handle error
//	}
//	defer components.Close()
//
//	doc := listmeta.NewMetadataSet()
//	components.Annotator.OnLoadData(ctx, record, doc)
func NewWithConfig(ctx context.Context, cfg *listmeta.Config, pool DBPool) (*Components, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	components := &Components{Checks: make(map[string]HealthCheck)}
	tables := cfg.Database.TableNames
	cols := cfg.Database.Columns

	var thumbnails listmeta.ThumbnailStore
	switch cfg.Database.Driver {
	case listmeta.DriverPgx:
		if pool == nil {
			return nil, fmt.Errorf("pgx driver requires a connection pool")
		}
		if err := verifyTables(ctx, pool, tables); err != nil {
			return nil, err
		}
		thumbnails = internal.NewPostgresThumbnailRepository(pool, tables.Thumbnails, cols.ThumbnailPath, cols.ThumbnailListID)
		if tables.Lists != "" {
			components.Lists = internal.NewPostgresListRepository(pool, tables.Lists)
		}
		if p, ok := pool.(internal.PostgresPinger); ok {
			components.Checks["database"] = func(ctx context.Context) error {
				return internal.PostgresHealthCheck(ctx, p, cfg.Database, cfg.Database.Timeout)
			}
		}
	default:
		db, err := internal.OpenSQLDB(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxConnections)
		if err != nil {
			return nil, err
		}
		components.closers = append(components.closers, func() { db.Close() })
		if err := verifySQLTables(ctx, db, tables); err != nil {
			components.Close()
			return nil, err
		}
		thumbnails = internal.NewSQLThumbnailRepository(db, tables.Thumbnails, cols.ThumbnailPath, cols.ThumbnailListID)
		if tables.Lists != "" {
			components.Lists = internal.NewSQLListRepository(db, tables.Lists)
		}
		components.Checks["database"] = db.PingContext
	}

	thumbnails = internal.GuardThumbnailStore(thumbnails, cfg.Annotator.LookupBreaker)

	assets, assetCheck, err := newAssets(ctx, cfg)
	if err != nil {
		components.Close()
		return nil, err
	}
	if assetCheck != nil {
		components.Checks["assets"] = assetCheck
	}

	components.Thumbnails = thumbnails
	components.Assets = assets
	components.Annotator = internal.NewAnnotator(thumbnails, assets, cfg.Site.RootURL, cfg.Annotator)
	zap.S().Infow("list metadata annotator ready",
		"driver", cfg.Database.Driver,
		"assets", cfg.Assets.Backend,
		"strip_markup", cfg.Annotator.StripMarkup,
		"generic_tags", cfg.Annotator.EmitGenericTags,
	)
	return components, nil
}

// NewAssetChecker returns the checker selected by cfg.Assets.Backend.
func NewAssetChecker(ctx context.Context, cfg *listmeta.Config) (listmeta.AssetChecker, error) {
	checker, _, err := newAssets(ctx, cfg)
	return checker, err
}

func newAssets(ctx context.Context, cfg *listmeta.Config) (listmeta.AssetChecker, HealthCheck, error) {
	switch cfg.Assets.Backend {
	case listmeta.AssetBackendLocal, "":
		return internal.NewLocalAssetChecker(cfg.Site.RootDir), nil, nil
	case listmeta.AssetBackendS3:
		if err := internal.ValidateS3Config(cfg.Assets); err != nil {
			return nil, nil, err
		}
		client, err := internal.NewS3Client(ctx, cfg.Assets)
		if err != nil {
			return nil, nil, err
		}
		check := func(ctx context.Context) error {
			return internal.S3HealthCheck(ctx, client, cfg.Assets.S3Bucket, cfg.Assets.Timeout)
		}
		return internal.NewS3AssetChecker(client, cfg.Assets.S3Bucket, cfg.Assets.S3Prefix, cfg.Assets.Timeout), check, nil
	default:
		return nil, nil, fmt.Errorf("unknown asset backend %q", cfg.Assets.Backend)
	}
}

func requiredTables(tables listmeta.TableNames) []string {
	required := []string{tables.Thumbnails}
	if tables.Lists != "" {
		required = append(required, tables.Lists)
	}
	return required
}

// unqualified drops a schema qualifier so names compare against information_schema.
func unqualified(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.Trim(name, `"`)
}

func missingTables(found []string, tables listmeta.TableNames) []string {
	var missing []string
	for _, t := range requiredTables(tables) {
		if !slices.Contains(found, unqualified(t)) {
			missing = append(missing, t)
		}
	}
	return missing
}

const listTablesQuery = `SELECT table_name FROM information_schema.tables WHERE table_type = 'BASE TABLE'`

func verifyTables(ctx context.Context, pool DBPool, tables listmeta.TableNames) error {
	rows, err := pool.Query(ctx, listTablesQuery)
	if err != nil {
		return fmt.Errorf("failed to verify database connection: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		found = append(found, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	if missing := missingTables(found, tables); len(missing) > 0 {
		return fmt.Errorf("required tables are missing in the database: %s", strings.Join(missing, ", "))
	}
	return nil
}

func verifySQLTables(ctx context.Context, db *sql.DB, tables listmeta.TableNames) error {
	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return fmt.Errorf("failed to verify database connection: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan table name: %w", err)
		}
		found = append(found, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}

	if missing := missingTables(found, tables); len(missing) > 0 {
		return fmt.Errorf("required tables are missing in the database: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ConnString builds a postgres:// URL from cfg using password.
func ConnString(cfg listmeta.DatabaseConfig, password string) string {
	var userInfo *url.Userinfo
	if password != "" {
		userInfo = url.UserPassword(cfg.Username, password)
	} else {
		userInfo = url.User(cfg.Username)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/" + cfg.Database,
	}

	q := url.Values{}
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// resolvePassword returns the configured password, or an IAM connect token
// when useIAM is set.
func resolvePassword(ctx context.Context, cfg listmeta.DatabaseConfig) (string, error) {
	if !cfg.UseIAM {
		return cfg.Password, nil
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}
	endpoint := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	token, err := auth.GenerateDbConnectAuthToken(ctx, endpoint, awsCfg.Region, awsCfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("generate iam auth token: %w", err)
	}
	zap.S().Infow("generated IAM auth token for Postgres connection", "host", cfg.Host)
	return token, nil
}

// NewPool creates a PostgreSQL connection pool from config and pings it.
func NewPool(ctx context.Context, cfg listmeta.DatabaseConfig) (*pgxpool.Pool, error) {
	if err := internal.ValidatePostgresConfig(cfg); err != nil {
		return nil, err
	}

	password, err := resolvePassword(ctx, cfg)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(ConnString(cfg, password))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.Timeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := internal.PingWithTimeout(ctx, pool, 5*time.Second); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
