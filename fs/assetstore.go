// Package fs provides file-based storage for resolved image assets.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/prodimg"
)

// defaultURLPrefix is the root-relative directory recorded in the
// catalog for stored assets.
const defaultURLPrefix = "machines"

// Ensure AssetStore implements prodimg.AssetStore at compile time.
var _ prodimg.AssetStore = (*AssetStore)(nil)

// AssetStore stores one image file per machine under a base directory
// and records root-relative paths of the form /machines/<id>.jpg.
type AssetStore struct {
	baseDir   string
	urlPrefix string
}

// NewAssetStore creates a new AssetStore writing to the given directory.
func NewAssetStore(baseDir string) *AssetStore {
	return &AssetStore{baseDir: baseDir, urlPrefix: defaultURLPrefix}
}

// Save writes image bytes for a machine and returns the root-relative
// path to record. The write goes through a temp file and rename so a
// crash never leaves a truncated asset behind.
func (s *AssetStore) Save(ctx context.Context, machineID int64, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("create asset dir: %w", err)
	}

	name := fmt.Sprintf("%d.jpg", machineID)
	finalPath := filepath.Join(s.baseDir, name)

	tmp, err := os.CreateTemp(s.baseDir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close asset: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename asset: %w", err)
	}

	return "/" + s.urlPrefix + "/" + name, nil
}

// Exists reports whether the file behind a recorded root-relative path
// is present on disk. Paths outside the store's prefix are unknown and
// reported missing.
func (s *AssetStore) Exists(relPath string) bool {
	name, ok := strings.CutPrefix(relPath, "/"+s.urlPrefix+"/")
	if !ok || name == "" || strings.Contains(name, "/") {
		return false
	}
	_, err := os.Stat(filepath.Join(s.baseDir, name))
	return err == nil
}

// RemoveAll deletes every stored asset file.
func (s *AssetStore) RemoveAll() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jpg") {
			continue
		}
		if err := os.Remove(filepath.Join(s.baseDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}
