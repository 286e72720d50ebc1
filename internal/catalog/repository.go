// internal/catalog/repository.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/paging"
)

// Repository defines the contract for book storage. Implementations carry
// no business rules; they answer queries and persist state. ISBN uniqueness
// must be enforced by the store itself (unique index or equivalent) so that
// concurrent writers cannot both pass the service's precondition check —
// Save surfaces ErrDuplicateISBN when that constraint fires.
type Repository interface {
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)
	FindByISBN(ctx context.Context, isbn string) (*Book, error)
	Save(ctx context.Context, book *Book) error
	Delete(ctx context.Context, book *Book) error
	FindByFilter(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Book], error)
}
