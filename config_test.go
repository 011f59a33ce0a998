package listmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "adm_cloner_listas", cfg.Database.TableNames.Thumbnails)
	assert.Equal(t, "miniatura", cfg.Database.Columns.ThumbnailPath)
	assert.Equal(t, "id_lista", cfg.Database.Columns.ThumbnailListID)
	assert.Equal(t, DefaultOGType, cfg.Annotator.OGType)
	assert.Equal(t, DefaultTwitterCard, cfg.Annotator.TwitterCard)
	assert.True(t, cfg.Annotator.EmitGenericTags)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "unknown driver",
			mutate:    func(c *Config) { c.Database.Driver = "mysql" },
			wantField: "database.driver",
		},
		{
			name:      "pgx without connections",
			mutate:    func(c *Config) { c.Database.MaxConnections = 0 },
			wantField: "database.maxConnections",
		},
		{
			name:      "empty thumbnail table",
			mutate:    func(c *Config) { c.Database.TableNames.Thumbnails = "" },
			wantField: "database.tableNames.thumbnails",
		},
		{
			name:      "empty thumbnail column",
			mutate:    func(c *Config) { c.Database.Columns.ThumbnailPath = "" },
			wantField: "database.columns",
		},
		{
			name:      "relative root url",
			mutate:    func(c *Config) { c.Site.RootURL = "/site/" },
			wantField: "site.rootURL",
		},
		{
			name:      "local backend without root dir",
			mutate:    func(c *Config) { c.Site.RootDir = " " },
			wantField: "site.rootDir",
		},
		{
			name: "s3 backend without bucket",
			mutate: func(c *Config) {
				c.Assets.Backend = AssetBackendS3
			},
			wantField: "assets.s3Bucket",
		},
		{
			name:      "unknown backend",
			mutate:    func(c *Config) { c.Assets.Backend = "ftp" },
			wantField: "assets.backend",
		},
		{
			name:      "breaker without open duration",
			mutate:    func(c *Config) { c.Annotator.LookupBreaker.OpenDuration = 0 },
			wantField: "annotator.lookupBreaker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	data := []byte(`{
		"database": {"host": "db.internal", "tableNames": {"thumbnails": "thumbs"}},
		"site": {"rootURL": "https://example.org/", "rootDir": "/var/www"},
		"annotator": {"stripMarkup": false},
		"server": {"readTimeout": 3000000000}
	}`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "thumbs", cfg.Database.TableNames.Thumbnails)
	assert.Equal(t, "fabrik_lists", cfg.Database.TableNames.Lists)
	assert.Equal(t, "https://example.org/", cfg.Site.RootURL)
	assert.False(t, cfg.Annotator.StripMarkup)
	assert.True(t, cfg.Annotator.EmitGenericTags)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
}

func TestParseConfigRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown top-level key", data: `{"cache": {}}`},
		{name: "unknown driver", data: `{"database": {"driver": "sqlite"}}`},
		{name: "port out of range", data: `{"database": {"port": 70000}}`},
		{name: "wrong type", data: `{"annotator": {"stripMarkup": "yes"}}`},
		{name: "unknown twitter card", data: `{"annotator": {"twitterCard": "huge"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestParseConfigRunsValidate(t *testing.T) {
	_, err := ParseConfig([]byte(`{"assets": {"backend": "s3"}}`))
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "assets.s3Bucket", cfgErr.Field)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "listmeta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "debug"}}`), 0o600))

	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
