// internal/circulation/service.go
package circulation

import (
	"context"

	"github.com/google/uuid"

	"libris/internal/catalog"
	"libris/internal/paging"
)

// Books is the slice of the catalog the circulation service needs to
// resolve a loan's book by isbn.
type Books interface {
	GetByISBN(ctx context.Context, isbn string) (*catalog.Book, error)
}

// Service defines the interface for the circulation service.
type Service interface {
	Create(ctx context.Context, isbn, customer, customerEmail string) (*Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	MarkReturned(ctx context.Context, id uuid.UUID, returned bool) (*Loan, error)
	Find(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Loan], error)
	FindByBook(ctx context.Context, bookID uuid.UUID, req paging.PageRequest) (paging.Page[Loan], error)
	FindLateLoans(ctx context.Context, thresholdDays int) ([]*Loan, error)
}
