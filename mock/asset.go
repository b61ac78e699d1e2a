package mock

import (
	"context"

	"github.com/fwojciec/prodimg"
)

var _ prodimg.AssetStore = (*AssetStore)(nil)

// AssetStore is a mock implementation of prodimg.AssetStore.
type AssetStore struct {
	SaveFn      func(ctx context.Context, machineID int64, data []byte) (string, error)
	ExistsFn    func(relPath string) bool
	RemoveAllFn func() error
}

func (s *AssetStore) Save(ctx context.Context, machineID int64, data []byte) (string, error) {
	return s.SaveFn(ctx, machineID, data)
}

func (s *AssetStore) Exists(relPath string) bool {
	return s.ExistsFn(relPath)
}

func (s *AssetStore) RemoveAll() error {
	return s.RemoveAllFn()
}
