package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/listmeta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHeadObject struct {
	objects  map[string]bool
	err      error
	lastKey  string
	deadline bool
}

func (f *fakeHeadObject) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.lastKey = aws.ToString(params.Key)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	if f.objects[f.lastKey] {
		return &s3.HeadObjectOutput{}, nil
	}
	return nil, &types.NotFound{}
}

func TestS3AssetChecker_ObjectKey(t *testing.T) {
	assert.Equal(t, "images/5.png", NewS3AssetChecker(nil, "b", "", 0).ObjectKey("/images/5.png"))
	assert.Equal(t, "site/images/5.png", NewS3AssetChecker(nil, "b", "/site/", 0).ObjectKey("images/5.png"))
	assert.Equal(t, "a/b/images/5.png", NewS3AssetChecker(nil, "b", "a/b", 0).ObjectKey("//images/5.png"))
}

func TestS3AssetChecker_Exists(t *testing.T) {
	client := &fakeHeadObject{objects: map[string]bool{"site/images/5.png": true}}
	checker := NewS3AssetChecker(client, "assets", "site", time.Second)
	ctx := context.Background()

	ok, err := checker.Exists(ctx, "/images/5.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "site/images/5.png", client.lastKey)
	assert.True(t, client.deadline)

	ok, err = checker.Exists(ctx, "images/6.png")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3AssetChecker_NotFoundVariants(t *testing.T) {
	for _, notFound := range []error{
		&types.NotFound{},
		&types.NoSuchKey{},
		&smithy.GenericAPIError{Code: "NotFound"},
		&smithy.GenericAPIError{Code: "NoSuchKey"},
	} {
		checker := NewS3AssetChecker(&fakeHeadObject{err: notFound}, "assets", "", 0)
		ok, err := checker.Exists(context.Background(), "images/5.png")
		require.NoError(t, err, "%T", notFound)
		assert.False(t, ok)
	}
}

func TestS3AssetChecker_OtherErrors(t *testing.T) {
	for _, failure := range []error{
		&smithy.GenericAPIError{Code: "AccessDenied"},
		errors.New("dial tcp: connection refused"),
	} {
		client := &fakeHeadObject{err: failure}
		ok, err := NewS3AssetChecker(client, "assets", "", 0).Exists(context.Background(), "images/5.png")
		assert.False(t, ok)
		var lmErr *listmeta.ListMetaError
		require.ErrorAs(t, err, &lmErr)
		assert.Equal(t, listmeta.ErrCodeAssetCheckFailed, lmErr.Code)
		assert.False(t, client.deadline, "zero timeout must not set a deadline")
	}
}

func TestValidateS3Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     listmeta.AssetsConfig
		wantErr bool
	}{
		{name: "local backend ignored", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendLocal}},
		{name: "bucket only", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3, S3Bucket: "b"}},
		{name: "static credentials", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3, S3Bucket: "b", S3AccessKey: "k", S3SecretKey: "s"}},
		{name: "missing bucket", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3}, wantErr: true},
		{name: "key without secret", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3, S3Bucket: "b", S3AccessKey: "k"}, wantErr: true},
		{name: "secret without key", cfg: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3, S3Bucket: "b", S3SecretKey: "s"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateS3Config(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewS3Client_CustomEndpoint(t *testing.T) {
	client, err := NewS3Client(context.Background(), listmeta.AssetsConfig{
		Backend:     listmeta.AssetBackendS3,
		S3Bucket:    "assets",
		S3Region:    "us-east-1",
		S3Endpoint:  "http://localhost:9000",
		S3AccessKey: "minio",
		S3SecretKey: "minio",
	})
	require.NoError(t, err)
	opts := client.Options()
	assert.True(t, opts.UsePathStyle)
	assert.Equal(t, "us-east-1", opts.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
}
