// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/paging"
)

// Service defines the interface for the catalog service.
type Service interface {
	Create(ctx context.Context, title, author, isbn string) (*Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Book], error)
}
