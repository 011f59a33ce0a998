package internal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/lychee-technology/listmeta"
)

// LocalAssetChecker checks for assets below the site's root directory.
type LocalAssetChecker struct {
	rootDir string
}

var _ listmeta.AssetChecker = (*LocalAssetChecker)(nil)

func NewLocalAssetChecker(rootDir string) *LocalAssetChecker {
	return &LocalAssetChecker{rootDir: rootDir}
}

// Exists implements listmeta.AssetChecker. Paths that escape the root
// directory are reported as absent.
func (c *LocalAssetChecker) Exists(ctx context.Context, relPath string) (bool, error) {
	rel := filepath.Clean(filepath.FromSlash(TrimLeadingSlashes(relPath)))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}

	_, err := os.Stat(filepath.Join(c.rootDir, rel))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, listmeta.NewAssetCheckError(relPath, err)
}
