package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lychee-technology/listmeta"
)

// ValidateS3Config performs basic sanity checks on S3 asset settings.
func ValidateS3Config(cfg listmeta.AssetsConfig) error {
	if cfg.Backend != listmeta.AssetBackendS3 {
		return nil
	}
	if cfg.S3Bucket == "" {
		return fmt.Errorf("s3: backend=s3 requires s3Bucket")
	}
	if cfg.S3AccessKey != "" && cfg.S3SecretKey == "" {
		return fmt.Errorf("s3AccessKey provided without s3SecretKey")
	}
	if cfg.S3SecretKey != "" && cfg.S3AccessKey == "" {
		return fmt.Errorf("s3SecretKey provided without s3AccessKey")
	}
	return nil
}

type headBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3HealthCheck verifies the asset bucket is reachable with the configured
// credentials. timeout may be 0 to use a sensible default (5s).
func S3HealthCheck(ctx context.Context, client headBucketAPI, bucket string, timeout time.Duration) error {
	if bucket == "" {
		return fmt.Errorf("s3 bucket not configured")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err != nil {
		if isS3NotFound(err) {
			return fmt.Errorf("s3 bucket %q does not exist", bucket)
		}
		return fmt.Errorf("s3 health request failed: %w", err)
	}
	return nil
}
