// Package client defines the entity client boundary shared by the gateway
// admin API and Konnect control plane implementations. The core never
// branches on error kind except NotFound during existence checks; every
// other failure is a single "write failed" signal carrying the original
// error for reporting.
package client

import (
	"context"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

// Lookup is the result of an existence check. Absence is a normal outcome,
// not an error, so callers can't accidentally swallow unrelated failures.
type Lookup struct {
	Found  bool
	Entity entity.Snapshot
}

// EntityClient is the CRUD surface both systems expose.
type EntityClient interface {
	// List returns every entity of the given type.
	List(ctx context.Context, typ entity.Type) ([]entity.Snapshot, error)

	// Get returns one entity by name or id. A missing entity is an
	// ErrCodeEntityNotFound error.
	Get(ctx context.Context, typ entity.Type, nameOrID string) (entity.Snapshot, error)

	// Lookup checks whether an entity exists, returning the entity when
	// found. Only genuine failures produce an error.
	Lookup(ctx context.Context, typ entity.Type, nameOrID string) (Lookup, error)

	// Create adds a new entity.
	Create(ctx context.Context, typ entity.Type, fields entity.Fields) (entity.Snapshot, error)

	// Update replaces the mutable fields of an existing entity.
	Update(ctx context.Context, typ entity.Type, nameOrID string, fields entity.Fields) (entity.Snapshot, error)

	// Delete removes an entity.
	Delete(ctx context.Context, typ entity.Type, nameOrID string) error
}
