package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lychee-technology/listmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithID(id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req := httptest.NewRequest(http.MethodGet, "/lists/id", nil)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestParseListID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "5", want: 5},
		{raw: " 42 ", want: 42},
		{raw: "0", want: 0},
		{raw: "", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "-3", wantErr: true},
		{raw: "99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseListID(requestWithID(tt.raw))
		if tt.wantErr {
			var lmErr *listmeta.ListMetaError
			require.ErrorAs(t, err, &lmErr, tt.raw)
			assert.Equal(t, listmeta.ErrorTypeValidation, lmErr.Type)
			assert.Equal(t, listmeta.ErrCodeInvalidListID, lmErr.Code)
			assert.Equal(t, "id", lmErr.Field)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseListID_KeepsParseCause(t *testing.T) {
	_, err := parseListID(requestWithID("99999999999999999999"))
	assert.ErrorIs(t, err, strconv.ErrRange)
}

func TestWriteSuccessAndError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, writeSuccess(rec, http.StatusOK, map[string]int{"n": 1}))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":{"n":1}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, writeError(rec, http.StatusBadRequest, "bad"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"bad"}`, rec.Body.String())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, listmeta.DefaultConfig(), cfg)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listmeta.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"addr": ":9000"},
		"site": {"rootURL": "https://from-file.example.org"},
		"annotator": {"stripMarkup": false}
	}`), 0o644))

	cfg, err := loadConfig([]string{
		"-config", path,
		"-site-root-url", "https://from-flag.example.org",
		"-generic-tags=false",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "https://from-flag.example.org", cfg.Site.RootURL)
	assert.False(t, cfg.Annotator.StripMarkup, "unset flag keeps the file value")
	assert.False(t, cfg.Annotator.EmitGenericTags)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("LISTMETA_DB_DRIVER", "duckdb")
	t.Setenv("LISTMETA_DB_DSN", "/tmp/lists.duckdb")
	t.Setenv("LISTMETA_ASSET_BACKEND", "s3")
	t.Setenv("LISTMETA_S3_BUCKET", "assets")

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, listmeta.DriverDuckDB, cfg.Database.Driver)
	assert.Equal(t, "/tmp/lists.duckdb", cfg.Database.DSN)
	assert.Equal(t, listmeta.AssetBackendS3, cfg.Assets.Backend)
	assert.Equal(t, "assets", cfg.Assets.S3Bucket)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig([]string{"-asset-backend", "s3"})
	var cfgErr *listmeta.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "assets.s3Bucket", cfgErr.Field)

	_, err = loadConfig([]string{"-no-such-flag"})
	assert.Error(t, err)
}
