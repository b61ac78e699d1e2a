package prodimg

import "context"

// AssetStore persists resolved image bytes, one file per machine keyed by
// its identifier. Recorded paths are always root-relative so the catalog
// stays portable across deployments.
type AssetStore interface {
	// Save writes the image bytes for a machine and returns the
	// root-relative path to record in the catalog.
	Save(ctx context.Context, machineID int64, data []byte) (string, error)

	// Exists reports whether the file behind a recorded root-relative
	// path is present on disk.
	Exists(relPath string) bool

	// RemoveAll deletes every stored asset. Used by the destructive
	// reset mode.
	RemoveAll() error
}
