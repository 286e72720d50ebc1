// internal/catalog/domain.go
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Book represents a single title in the catalog.
// ISBN is unique across all persisted books and immutable after creation.
type Book struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	ISBN      string    `json:"isbn" db:"isbn"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Filter narrows a paginated book lookup. Fields left empty match anything;
// set fields match as case-insensitive substrings.
type Filter struct {
	Title  string
	Author string
}

// Patch carries the mutable fields of a Book for an update.
type Patch struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

var (
	// ErrDuplicateISBN is returned when a book with the same ISBN is
	// already persisted.
	ErrDuplicateISBN = errors.New("isbn already registered")

	// ErrNotFound is returned when a book id does not resolve.
	ErrNotFound = errors.New("book not found")
)
