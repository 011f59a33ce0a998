package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/lychee-technology/listmeta"
	"github.com/lychee-technology/listmeta/internal"
)

type uploadOptions struct {
	file         string
	target       string
	listID       int64
	createBucket bool
	assets       listmeta.AssetsConfig
}

func runUploadThumbnail(args []string) error {
	flags := newToolFlagSet("upload-thumbnail")
	var db dbOptions
	db.register(flags)

	opts := uploadOptions{assets: listmeta.AssetsConfig{Backend: listmeta.AssetBackendS3}}
	flags.StringVar(&opts.file, "file", "", "local image to upload (required)")
	flags.StringVar(&opts.target, "path", "", "site-relative path to store the image at (default images/<file name>)")
	flags.Int64Var(&opts.listID, "list-id", 0, "also map the uploaded path to this list")
	flags.BoolVar(&opts.createBucket, "create-bucket", false, "create the bucket when it does not exist")
	flags.StringVar(&opts.assets.S3Bucket, "s3-bucket", "", "asset bucket (required)")
	flags.StringVar(&opts.assets.S3Prefix, "s3-prefix", "", "key prefix the site's files live under")
	flags.StringVar(&opts.assets.S3Region, "s3-region", "", "bucket region")
	flags.StringVar(&opts.assets.S3Endpoint, "s3-endpoint", "", "custom S3 endpoint (MinIO, RustFS)")
	flags.StringVar(&opts.assets.S3AccessKey, "s3-access-key", "", "static access key")
	flags.StringVar(&opts.assets.S3SecretKey, "s3-secret-key", "", "static secret key")

	if err := parseToolFlags(flags, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := opts.validate(); err != nil {
		return err
	}

	ctx := context.Background()
	key, err := uploadThumbnail(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded thumbnail, bucket: %s, key: %s\n", opts.assets.S3Bucket, key)

	if opts.listID <= 0 {
		return nil
	}

	pool, err := db.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	return withTx(ctx, pool, func(tx pgx.Tx) error {
		return upsertThumbnails(ctx, tx, db.db, []thumbnailEntry{{ListID: opts.listID, Path: opts.targetPath()}})
	})
}

func (o uploadOptions) validate() error {
	if o.file == "" {
		return fmt.Errorf("-file is required")
	}
	if internal.TrimLeadingSlashes(o.targetPath()) == "" {
		return fmt.Errorf("-path must name a file")
	}
	if o.listID < 0 {
		return fmt.Errorf("-list-id must not be negative")
	}
	return internal.ValidateS3Config(o.assets)
}

// targetPath is the site-relative path the image is published under.
func (o uploadOptions) targetPath() string {
	if o.target != "" {
		return internal.TrimLeadingSlashes(o.target)
	}
	return path.Join("images", filepath.Base(o.file))
}

func uploadThumbnail(ctx context.Context, opts uploadOptions) (string, error) {
	client, err := internal.NewS3Client(ctx, opts.assets)
	if err != nil {
		return "", err
	}
	if opts.createBucket {
		if err := internal.EnsureBucket(ctx, client, opts.assets.S3Bucket); err != nil {
			return "", err
		}
	}

	in, err := os.Open(opts.file)
	if err != nil {
		return "", fmt.Errorf("open src: %w", err)
	}
	defer in.Close()

	uploader := internal.NewThumbnailUploader(client, opts.assets.S3Bucket, opts.assets.S3Prefix)
	return uploader.Upload(ctx, opts.targetPath(), in)
}
