package mock

import (
	"context"

	"github.com/fwojciec/prodimg"
)

var _ prodimg.MachineService = (*MachineService)(nil)

// MachineService is a mock implementation of prodimg.MachineService.
type MachineService struct {
	FindMachinesFn    func(ctx context.Context, filter prodimg.MachineFilter) ([]*prodimg.Machine, error)
	FindMachineByIDFn func(ctx context.Context, id int64) (*prodimg.Machine, error)
	RecordAssetFn     func(ctx context.Context, id int64, upd prodimg.AssetUpdate) error
	ClearAssetsFn     func(ctx context.Context) error
}

func (s *MachineService) FindMachines(ctx context.Context, filter prodimg.MachineFilter) ([]*prodimg.Machine, error) {
	return s.FindMachinesFn(ctx, filter)
}

func (s *MachineService) FindMachineByID(ctx context.Context, id int64) (*prodimg.Machine, error) {
	return s.FindMachineByIDFn(ctx, id)
}

func (s *MachineService) RecordAsset(ctx context.Context, id int64, upd prodimg.AssetUpdate) error {
	return s.RecordAssetFn(ctx, id, upd)
}

func (s *MachineService) ClearAssets(ctx context.Context) error {
	return s.ClearAssetsFn(ctx)
}
