package prodimg

import "context"

// Machine represents a catalog entry needing an image asset.
// Machines are created and updated by the external ingestion pipeline;
// this module only reads them and fills in asset and provenance fields.
type Machine struct {
	ID        int64  `json:"id"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	UniqueRef string `json:"uniqueRef"`

	// Provenance discovered by prior enrichment runs. Empty when unknown.
	ImageURL   string `json:"imageUrl"`
	ProductURL string `json:"productUrl"`
	ASIN       string `json:"asin"`

	// LocalImagePath is the root-relative path of the stored asset,
	// empty when no asset has been resolved yet.
	LocalImagePath string `json:"localImagePath"`

	// ImageHash is the content hash of the stored asset bytes.
	ImageHash string `json:"imageHash"`
}

// Validate returns an error if the machine contains invalid fields.
func (m *Machine) Validate() error {
	if m.Brand == "" && m.Model == "" && m.UniqueRef == "" {
		return Errorf(EINVALID, "machine requires a brand, model, or unique reference")
	}
	return nil
}

// Label returns a human-readable identifier for logging.
func (m *Machine) Label() string {
	if m.Brand == "" && m.Model == "" {
		return m.UniqueRef
	}
	return m.Brand + " " + m.Model
}

// MachineFilter represents a filter for FindMachines.
// Brand and Model narrow by case-insensitive substring match.
type MachineFilter struct {
	ID    *int64  `json:"id"`
	Brand *string `json:"brand"`
	Model *string `json:"model"`

	Limit int `json:"limit"`
}

// AssetUpdate represents a partial update to a machine's asset fields.
// Nil pointers leave the stored value untouched; non-nil provenance fields
// only fill gaps (a previously stored value is never overwritten with
// null). LocalImagePath is the exception: when non-nil it is always set,
// including to the empty string on reset.
type AssetUpdate struct {
	ImageURL       *string `json:"imageUrl"`
	ProductURL     *string `json:"productUrl"`
	ASIN           *string `json:"asin"`
	ImageHash      *string `json:"imageHash"`
	LocalImagePath *string `json:"localImagePath"`

	// Replace forces provenance fields to overwrite existing values
	// instead of filling gaps. Used by refresh runs where the newest
	// accepted candidate wins.
	Replace bool `json:"replace"`
}

// MachineService is the persistence gateway for catalog machines.
type MachineService interface {
	// FindMachines retrieves machines matching the filter, newest first.
	FindMachines(ctx context.Context, filter MachineFilter) ([]*Machine, error)

	// FindMachineByID retrieves a machine by ID.
	// Returns ENOTFOUND if the machine does not exist.
	FindMachineByID(ctx context.Context, id int64) (*Machine, error)

	// RecordAsset applies a partial asset/provenance update.
	// Returns ENOTFOUND if the machine does not exist.
	RecordAsset(ctx context.Context, id int64, upd AssetUpdate) error

	// ClearAssets removes all stored local image paths and hashes.
	// Used by the destructive reset mode before a full re-resolution.
	ClearAssets(ctx context.Context) error
}
