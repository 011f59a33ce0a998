package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

type bucketAPI interface {
	headBucketAPI
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// EnsureBucket creates bucket unless it already exists.
func EnsureBucket(ctx context.Context, client bucketAPI, bucket string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
				return nil
			}
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	zap.S().Infow("created asset bucket", "bucket", bucket)
	return nil
}

type uploadAPI interface {
	manager.UploadAPIClient
	headObjectAPI
}

// ThumbnailUploader puts thumbnail images where S3AssetChecker looks for them.
type ThumbnailUploader struct {
	uploader *manager.Uploader
	checker  *S3AssetChecker
}

// NewThumbnailUploader uploads through client into bucket under prefix.
func NewThumbnailUploader(client uploadAPI, bucket, prefix string) *ThumbnailUploader {
	return &ThumbnailUploader{
		uploader: manager.NewUploader(client),
		checker:  NewS3AssetChecker(client, bucket, prefix, 0),
	}
}

// Upload stores body under the object key for the site-relative path relPath
// and returns that key.
func (u *ThumbnailUploader) Upload(ctx context.Context, relPath string, body io.Reader) (string, error) {
	key := u.checker.ObjectKey(relPath)
	if key == "" {
		return "", fmt.Errorf("empty thumbnail path")
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.checker.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	return key, nil
}
