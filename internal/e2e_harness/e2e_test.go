//go:build integration

package e2e_harness

import (
	"context"
	"testing"

	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2EAnnotateWithPostgresAndS3(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E harness in -short mode")
	}
	ctx := context.Background()
	h := &TestHarness{}

	_, err := h.StartPostgres(ctx)
	require.NoError(t, err, "start postgres")
	defer h.StopPostgres(ctx)

	_, err = h.StartS3(ctx)
	require.NoError(t, err, "start rustfs")
	defer h.StopS3(ctx)

	cfg := listmeta.DefaultConfig()
	cfg.Site.RootURL = "https://lists.example.org"
	cfg.Assets = listmeta.AssetsConfig{
		Backend:     listmeta.AssetBackendS3,
		S3Bucket:    "list-assets",
		S3Prefix:    "site",
		S3Region:    "us-east-1",
		S3Endpoint:  h.S3Endpoint,
		S3AccessKey: S3AccessKey,
		S3SecretKey: S3SecretKey,
	}

	require.NoError(t, SeedPostgres(ctx, h.Pool, cfg.Database.TableNames, cfg.Database.Columns, DefaultSeed))
	require.NoError(t, UploadThumbnails(ctx, cfg.Assets, "images/5.png"))

	components, err := factory.NewWithConfig(ctx, cfg, h.Pool)
	require.NoError(t, err)
	defer components.Close()

	annotate := func(id int64) *listmeta.MetadataSet {
		record, err := components.Lists.GetList(ctx, id)
		require.NoError(t, err)
		doc := listmeta.NewMetadataSet()
		components.Annotator.OnLoadData(ctx, *record, doc)
		return doc
	}

	doc := annotate(5)
	tag, ok := doc.Get(listmeta.KeyOGImage)
	require.True(t, ok)
	assert.Equal(t, "https://lists.example.org/images/5.png", tag.Value)
	tag, _ = doc.Get(listmeta.KeyOGDescription)
	assert.Equal(t, "Summary", tag.Value)

	// mapping exists but the object was never uploaded
	assert.False(t, annotate(6).Has(listmeta.KeyOGImage))
	// no mapping at all
	assert.False(t, annotate(7).Has(listmeta.KeyTwitterImage))

	_, err = components.Lists.GetList(ctx, 404)
	assert.True(t, listmeta.IsNotFound(err))
}
