package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/listmeta"
)

// headObjectAPI is the part of *s3.Client the checker calls.
type headObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3AssetChecker checks for assets stored as objects under a bucket prefix.
type S3AssetChecker struct {
	client  headObjectAPI
	bucket  string
	prefix  string
	timeout time.Duration
}

var _ listmeta.AssetChecker = (*S3AssetChecker)(nil)

func NewS3AssetChecker(client headObjectAPI, bucket, prefix string, timeout time.Duration) *S3AssetChecker {
	return &S3AssetChecker{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		timeout: timeout,
	}
}

// ObjectKey maps a site-relative path to its object key.
func (c *S3AssetChecker) ObjectKey(relPath string) string {
	rel := TrimLeadingSlashes(relPath)
	if c.prefix == "" {
		return rel
	}
	return path.Join(c.prefix, rel)
}

// Exists implements listmeta.AssetChecker with a HeadObject request.
func (c *S3AssetChecker) Exists(ctx context.Context, relPath string) (bool, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(c.ObjectKey(relPath)),
	})
	if err == nil {
		return true, nil
	}
	if isS3NotFound(err) {
		return false, nil
	}
	return false, listmeta.NewAssetCheckError(relPath, err)
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}

// NewS3Client builds an S3 client from the asset settings. Static credentials
// and a custom endpoint (MinIO, RustFS) are used when configured; otherwise
// the default AWS credential chain applies.
func NewS3Client(ctx context.Context, cfg listmeta.AssetsConfig) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{}
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")))
	}
	if cfg.S3Endpoint != "" {
		loadOpts = append(loadOpts, config.WithBaseEndpoint(cfg.S3Endpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3Endpoint != ""
	}), nil
}
