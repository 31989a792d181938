package contract

import (
	"context"

	"plant-journal-be/internal/entity"
	"plant-journal-be/internal/repository/specification"

	"github.com/google/uuid"
)

// DiscoveryRepository is the durable store for journal records. Writes are
// serialized by the underlying database; callers need no external locking.
type DiscoveryRepository interface {
	// Insert assigns the record id if unset, persists and returns the id.
	// An id collision is resolved by overwrite.
	Insert(ctx context.Context, discovery *entity.Discovery) (uuid.UUID, error)
	// Update replaces the whole record by id.
	Update(ctx context.Context, discovery *entity.Discovery) error
	// DeleteById removes one record. Deleting a missing id is a no-op.
	DeleteById(ctx context.Context, id uuid.UUID) error
	DeleteAllByOwner(ctx context.Context, ownerId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Discovery, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Discovery, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
