// internal/circulation/domain.go
package circulation

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"libris/internal/catalog"
)

// Loan represents a book lent to a customer. A loan is Open while Returned
// is nil or false and Closed once it is true; Closed is terminal. Book,
// Customer and LoanDate are fixed at creation. Loans are never deleted —
// closed loans remain as history.
type Loan struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	BookID        uuid.UUID     `json:"book_id" db:"book_id"`
	Book          *catalog.Book `json:"book,omitempty" db:"-"`
	Customer      string        `json:"customer" db:"customer"`
	CustomerEmail string        `json:"customer_email,omitempty" db:"customer_email"`
	LoanDate      time.Time     `json:"loan_date" db:"loan_date"`
	Returned      *bool         `json:"returned" db:"returned"`
}

// Open reports whether the book is still out.
func (l *Loan) Open() bool {
	return l.Returned == nil || !*l.Returned
}

// Filter narrows a paginated loan lookup. Fields left empty match anything.
type Filter struct {
	ISBN     string
	Customer string
}

var (
	// ErrBookNotFound is returned when the isbn given at loan creation
	// does not resolve to a book.
	ErrBookNotFound = errors.New("book not found for given isbn")

	// ErrBookUnavailable is returned when the book already has an open loan.
	ErrBookUnavailable = errors.New("book has already been taken by another customer")

	// ErrNotFound is returned when a loan id does not resolve.
	ErrNotFound = errors.New("loan not found")
)
