package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/fwojciec/prodimg"
)

// defaultFindLimit bounds FindMachines when the filter doesn't set one.
const defaultFindLimit = 200

// Compile-time interface verification.
var _ prodimg.MachineService = (*MachineService)(nil)

// MachineService implements prodimg.MachineService using SQLite.
type MachineService struct {
	db *DB
}

// NewMachineService creates a new MachineService.
func NewMachineService(db *DB) *MachineService {
	return &MachineService{db: db}
}

// CreateMachine inserts a new machine. It sits outside the resolution
// flow, serving tests and the ingestion boundary.
func (s *MachineService) CreateMachine(ctx context.Context, machine *prodimg.Machine) error {
	if err := machine.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO machines (brand, model, unique_ref, image_url, product_url, asin, image_hash, local_image_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, machine.Brand, machine.Model, machine.UniqueRef,
		nullString(machine.ImageURL), nullString(machine.ProductURL), nullString(machine.ASIN),
		nullString(machine.ImageHash), nullString(machine.LocalImagePath))
	if err != nil {
		return err
	}

	machine.ID, err = result.LastInsertId()
	return err
}

// FindMachineByID retrieves a machine by ID.
func (s *MachineService) FindMachineByID(ctx context.Context, id int64) (*prodimg.Machine, error) {
	row := s.db.QueryRowContext(ctx, selectMachine+" WHERE id = ?", id)
	machine, err := scanMachine(row.Scan)
	if err == sql.ErrNoRows {
		return nil, prodimg.Errorf(prodimg.ENOTFOUND, "machine not found")
	}
	if err != nil {
		return nil, err
	}
	return machine, nil
}

// FindMachines retrieves machines matching the filter, newest first.
// Brand and model narrow by case-insensitive substring match. The result
// is capped at the filter limit, default 200.
func (s *MachineService) FindMachines(ctx context.Context, filter prodimg.MachineFilter) ([]*prodimg.Machine, error) {
	var query strings.Builder
	var args []any

	query.WriteString(selectMachine)
	query.WriteString(" WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Brand != nil {
		query.WriteString(" AND LOWER(brand) LIKE ?")
		args = append(args, "%"+strings.ToLower(*filter.Brand)+"%")
	}
	if filter.Model != nil {
		query.WriteString(" AND LOWER(model) LIKE ?")
		args = append(args, "%"+strings.ToLower(*filter.Model)+"%")
	}

	query.WriteString(" ORDER BY id DESC LIMIT ?")
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFindLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var machines []*prodimg.Machine
	for rows.Next() {
		machine, err := scanMachine(rows.Scan)
		if err != nil {
			return nil, err
		}
		machines = append(machines, machine)
	}

	return machines, rows.Err()
}

// RecordAsset applies a partial asset/provenance update. Provenance
// fields fill gaps by default (an existing value wins over a new one);
// Replace inverts that so the new value wins. The local path is always
// set when present.
func (s *MachineService) RecordAsset(ctx context.Context, id int64, upd prodimg.AssetUpdate) error {
	var sets []string
	var args []any

	provenance := func(col string, v *string) {
		if v == nil {
			return
		}
		if upd.Replace {
			sets = append(sets, col+" = ?")
		} else {
			sets = append(sets, col+" = COALESCE("+col+", ?)")
		}
		args = append(args, *v)
	}
	provenance("image_url", upd.ImageURL)
	provenance("product_url", upd.ProductURL)
	provenance("asin", upd.ASIN)
	provenance("image_hash", upd.ImageHash)

	if upd.LocalImagePath != nil {
		sets = append(sets, "local_image_path = ?")
		args = append(args, *upd.LocalImagePath)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx, "UPDATE machines SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return prodimg.Errorf(prodimg.ENOTFOUND, "machine not found")
	}

	return nil
}

// ClearAssets removes all recorded local paths and content hashes.
func (s *MachineService) ClearAssets(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "UPDATE machines SET local_image_path = NULL, image_hash = NULL")
	return err
}

const selectMachine = `
	SELECT id, brand, model, unique_ref, image_url, product_url, asin, image_hash, local_image_path
	FROM machines`

// scanMachine scans one machine row, mapping NULL columns to empty strings.
func scanMachine(scan func(dest ...any) error) (*prodimg.Machine, error) {
	var machine prodimg.Machine
	var imageURL, productURL, asin, imageHash, localPath sql.NullString

	if err := scan(&machine.ID, &machine.Brand, &machine.Model, &machine.UniqueRef,
		&imageURL, &productURL, &asin, &imageHash, &localPath); err != nil {
		return nil, err
	}

	machine.ImageURL = imageURL.String
	machine.ProductURL = productURL.String
	machine.ASIN = asin.String
	machine.ImageHash = imageHash.String
	machine.LocalImagePath = localPath.String

	return &machine, nil
}

// nullString maps empty strings to NULL so unknown provenance stays NULL
// and COALESCE updates can fill it later.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
