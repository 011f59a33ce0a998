package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("failed to set up logger: %w", err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init-db":
		if err := runInitDB(os.Args[2:]); err != nil {
			sugar.Fatalf("init-db: %v", err)
		}
	case "register-thumbnails":
		if err := runRegisterThumbnails(os.Args[2:]); err != nil {
			sugar.Fatalf("register-thumbnails: %v", err)
		}
	case "upload-thumbnail":
		if err := runUploadThumbnail(os.Args[2:]); err != nil {
			sugar.Fatalf("upload-thumbnail: %v", err)
		}
	default:
		sugar.Errorf("unknown command %q", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	logger := zap.S()
	logger.Info("Usage: listmeta-tools <command> [options]")
	logger.Info("")
	logger.Info("Commands:")
	logger.Info("  init-db               Create the list and thumbnail tables")
	logger.Info("  register-thumbnails   Map <id>.<ext> images under a site directory to their lists")
	logger.Info("  upload-thumbnail      Upload a thumbnail image to the S3 asset bucket")
}
