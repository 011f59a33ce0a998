package listmeta

import (
	"net/url"
	"strings"
	"time"
)

// Config consolidates the settings of the annotator, its stores and the server.
type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Site      SiteConfig      `json:"site"`
	Annotator AnnotatorConfig `json:"annotator"`
	Assets    AssetsConfig    `json:"assets"`
	Server    ServerConfig    `json:"server"`
	Logging   LoggingConfig   `json:"logging"`
}

// Database drivers understood by the factory.
const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `json:"driver"`
	DSN             string        `json:"dsn"`
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Database        string        `json:"database"`
	Username        string        `json:"username"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"sslMode"`
	UseIAM          bool          `json:"useIAM"`
	Region          string        `json:"region"`
	MaxConnections  int           `json:"maxConnections"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `json:"connMaxIdleTime"`
	Timeout         time.Duration `json:"timeout"`
	TableNames      TableNames    `json:"tableNames"`
	Columns         ColumnNames   `json:"columns"`
}

// TableNames holds the tables read by the stores.
type TableNames struct {
	Lists      string `json:"lists"`
	Thumbnails string `json:"thumbnails"`
}

// ColumnNames holds the thumbnail mapping columns.
type ColumnNames struct {
	ThumbnailPath   string `json:"thumbnailPath"`
	ThumbnailListID string `json:"thumbnailListId"`
}

// SiteConfig locates the public site: RootURL is what link previewers fetch
// from, RootDir is where the same files live on disk.
type SiteConfig struct {
	RootURL string `json:"rootURL"`
	RootDir string `json:"rootDir"`
}

// AnnotatorConfig selects which tag variant is written.
type AnnotatorConfig struct {
	StripMarkup     bool          `json:"stripMarkup"`
	EmitGenericTags bool          `json:"emitGenericTags"`
	OGType          string        `json:"ogType"`
	TwitterCard     string        `json:"twitterCard"`
	LookupBreaker   BreakerConfig `json:"lookupBreaker"`
}

// BreakerConfig suspends thumbnail lookups for OpenDuration after Threshold
// failures within Window. A zero Threshold disables the breaker.
type BreakerConfig struct {
	Threshold    int           `json:"threshold"`
	Window       time.Duration `json:"window"`
	OpenDuration time.Duration `json:"openDuration"`
}

// Asset backends
const (
	AssetBackendLocal = "local"
	AssetBackendS3    = "s3"
)

// AssetsConfig selects where thumbnail existence is checked.
type AssetsConfig struct {
	Backend     string        `json:"backend"`
	S3Bucket    string        `json:"s3Bucket"`
	S3Prefix    string        `json:"s3Prefix"`
	S3Region    string        `json:"s3Region"`
	S3Endpoint  string        `json:"s3Endpoint"`
	S3AccessKey string        `json:"s3AccessKey"`
	S3SecretKey string        `json:"s3SecretKey"`
	Timeout     time.Duration `json:"timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr         string        `json:"addr"`
	ReadTimeout  time.Duration `json:"readTimeout"`
	WriteTimeout time.Duration `json:"writeTimeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverPgx,
			Host:            "localhost",
			Port:            5432,
			Database:        "listmeta",
			Username:        "postgres",
			SSLMode:         "disable",
			MaxConnections:  10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 5 * time.Minute,
			Timeout:         5 * time.Second,
			TableNames: TableNames{
				Lists:      "fabrik_lists",
				Thumbnails: "adm_cloner_listas",
			},
			Columns: ColumnNames{
				ThumbnailPath:   "miniatura",
				ThumbnailListID: "id_lista",
			},
		},
		Site: SiteConfig{
			RootURL: "http://localhost:8080/",
			RootDir: ".",
		},
		Annotator: AnnotatorConfig{
			StripMarkup:     true,
			EmitGenericTags: true,
			OGType:          DefaultOGType,
			TwitterCard:     DefaultTwitterCard,
			LookupBreaker: BreakerConfig{
				Threshold:    5,
				Window:       30 * time.Second,
				OpenDuration: 30 * time.Second,
			},
		},
		Assets: AssetsConfig{
			Backend: AssetBackendLocal,
			Timeout: 2 * time.Second,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPgx, DriverPostgres, DriverDuckDB:
	default:
		return &ConfigError{Field: "database.driver", Message: "must be one of pgx, postgres, duckdb"}
	}

	if c.Database.Driver == DriverPgx && c.Database.MaxConnections <= 0 {
		return &ConfigError{Field: "database.maxConnections", Message: "must be greater than 0"}
	}

	if c.Database.TableNames.Thumbnails == "" {
		return &ConfigError{Field: "database.tableNames.thumbnails", Message: "must not be empty"}
	}

	if c.Database.Columns.ThumbnailPath == "" || c.Database.Columns.ThumbnailListID == "" {
		return &ConfigError{Field: "database.columns", Message: "thumbnail columns must not be empty"}
	}

	if b := c.Annotator.LookupBreaker; b.Threshold > 0 && (b.Window <= 0 || b.OpenDuration <= 0) {
		return &ConfigError{Field: "annotator.lookupBreaker", Message: "window and openDuration must be positive when threshold is set"}
	}

	u, err := url.Parse(c.Site.RootURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ConfigError{Field: "site.rootURL", Message: "must be an absolute URL"}
	}

	switch c.Assets.Backend {
	case AssetBackendLocal:
		if strings.TrimSpace(c.Site.RootDir) == "" {
			return &ConfigError{Field: "site.rootDir", Message: "required for the local asset backend"}
		}
	case AssetBackendS3:
		if c.Assets.S3Bucket == "" {
			return &ConfigError{Field: "assets.s3Bucket", Message: "required for the s3 asset backend"}
		}
	default:
		return &ConfigError{Field: "assets.backend", Message: "must be local or s3"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return "config validation error for field '" + e.Field + "': " + e.Message
}
