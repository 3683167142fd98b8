// Package species defines the repository interface for species persistence.
package species

import (
	"context"

	"github.com/tckdb/tckdb-go/pkg/types/common"
)

// ListFilter carries the optional filters of a paginated species listing.
type ListFilter struct {
	// Label filters by case-insensitive substring match on the label.
	Label string

	// InChIKey filters by exact InChIKey.
	InChIKey string

	// IsTS, when set, restricts the listing to transition states (true) or
	// wells (false).
	IsTS *bool

	// IncludeRetracted includes retracted records; by default they are
	// filtered out.
	IncludeRetracted bool

	Page common.PageRequest
}

// Repository defines the persistence contract for Species aggregates.
// Implementations must handle concurrent access safely (optimistic locking
// via the Version field).
type Repository interface {
	// Save persists a new species.
	// Returns errors.ErrCodeSpeciesExists when a record with the same ID
	// already exists.
	Save(ctx context.Context, sp *Species) error

	// FindByID retrieves a species by its unique identifier.
	// Returns errors.ErrCodeSpeciesNotFound when no record matches.
	FindByID(ctx context.Context, id common.ID) (*Species, error)

	// FindByInChIKey retrieves all species sharing an InChIKey.  Multiple
	// records may legitimately share a key (conformers, electronic states).
	FindByInChIKey(ctx context.Context, inchiKey string) ([]*Species, error)

	// List returns a filtered, paginated listing with the total match count.
	List(ctx context.Context, filter ListFilter) ([]*Species, int64, error)

	// Update persists lifecycle changes to an existing record.
	// Returns errors.ErrCodeConflict on a version mismatch and
	// errors.ErrCodeSpeciesNotFound when the record does not exist.
	Update(ctx context.Context, sp *Species) error

	// Delete removes a species permanently.
	// Returns errors.ErrCodeSpeciesNotFound when the record does not exist.
	Delete(ctx context.Context, id common.ID) error

	// Count returns the total number of stored species.
	Count(ctx context.Context) (int64, error)
}
