// internal/circulation/repository.go
package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libris/internal/paging"
)

// Repository defines the contract for loan storage. Implementations carry
// no business rules. At most one open loan may exist per book; the store
// must enforce that itself (a partial unique index or the store's lock) so
// that two concurrent borrowers cannot both pass the service's
// HasOpenLoan check — Save surfaces ErrBookUnavailable when the
// constraint fires for a new open loan.
type Repository interface {
	HasOpenLoan(ctx context.Context, bookID uuid.UUID) (bool, error)
	Save(ctx context.Context, loan *Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)
	FindByFilter(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Loan], error)
	FindByBook(ctx context.Context, bookID uuid.UUID, req paging.PageRequest) (paging.Page[Loan], error)
	FindLateLoans(ctx context.Context, cutoff time.Time) ([]*Loan, error)
}
