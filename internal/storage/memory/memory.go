// internal/storage/memory/memory.go

// Package memory provides mutex-guarded map implementations of the catalog
// and circulation repositories. The single lock is the transactional
// boundary: uniqueness checks and writes happen under it, so the invariants
// hold even with concurrent callers. Used in tests and as a dev mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/paging"
)

// Store holds all state behind one lock shared by both repositories, since
// loan queries resolve books and the open-loan constraint spans both maps.
type Store struct {
	mu    sync.RWMutex
	books map[uuid.UUID]catalog.Book
	loans map[uuid.UUID]circulation.Loan
}

// New creates an empty store.
func New() *Store {
	return &Store{
		books: make(map[uuid.UUID]catalog.Book),
		loans: make(map[uuid.UUID]circulation.Loan),
	}
}

// Books returns the catalog repository view of the store.
func (s *Store) Books() catalog.Repository {
	return &bookRepo{store: s}
}

// Loans returns the circulation repository view of the store.
func (s *Store) Loans() circulation.Repository {
	return &loanRepo{store: s}
}

type bookRepo struct {
	store *Store
}

func (r *bookRepo) ExistsByISBN(_ context.Context, isbn string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, b := range r.store.books {
		if b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (r *bookRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.books[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &b, nil
}

func (r *bookRepo) FindByISBN(_ context.Context, isbn string) (*catalog.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, b := range r.store.books {
		if b.ISBN == isbn {
			b := b
			return &b, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (r *bookRepo) Save(_ context.Context, book *catalog.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, b := range r.store.books {
		if b.ISBN == book.ISBN && id != book.ID {
			return catalog.ErrDuplicateISBN
		}
	}

	if book.ID == uuid.Nil {
		book.ID = uuid.New()
		if book.CreatedAt.IsZero() {
			book.CreatedAt = time.Now()
		}
	}
	book.UpdatedAt = time.Now()

	r.store.books[book.ID] = *book
	return nil
}

func (r *bookRepo) Delete(_ context.Context, book *catalog.Book) error {
	if book == nil || book.ID == uuid.Nil {
		return catalog.ErrNotFound
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.books[book.ID]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.store.books, book.ID)
	return nil
}

func (r *bookRepo) FindByFilter(_ context.Context, filter catalog.Filter, req paging.PageRequest) (paging.Page[catalog.Book], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []catalog.Book
	for _, b := range r.store.books {
		if !matchSubstring(b.Title, filter.Title) {
			continue
		}
		if !matchSubstring(b.Author, filter.Author) {
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	items := slicePage(matched, req)
	return paging.NewPage(items, len(matched), req), nil
}

type loanRepo struct {
	store *Store
}

func (r *loanRepo) HasOpenLoan(_ context.Context, bookID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.hasOpenLoanLocked(bookID), nil
}

func (r *loanRepo) Save(_ context.Context, loan *circulation.Loan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// Inserts and updates alike may not leave the book with two open
	// loans; reopening a closed loan is only allowed while nobody else
	// holds the book.
	if loan.Open() && r.store.hasOtherOpenLoanLocked(loan.BookID, loan.ID) {
		return circulation.ErrBookUnavailable
	}
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	stored := *loan
	stored.Book = nil
	r.store.loans[loan.ID] = stored
	return nil
}

func (r *loanRepo) FindByID(_ context.Context, id uuid.UUID) (*circulation.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	l, ok := r.store.loans[id]
	if !ok {
		return nil, circulation.ErrNotFound
	}
	r.store.attachBookLocked(&l)
	return &l, nil
}

func (r *loanRepo) FindByFilter(_ context.Context, filter circulation.Filter, req paging.PageRequest) (paging.Page[circulation.Loan], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []circulation.Loan
	for _, l := range r.store.loans {
		if filter.ISBN != "" {
			b, ok := r.store.books[l.BookID]
			if !ok || b.ISBN != filter.ISBN {
				continue
			}
		}
		if !matchSubstring(l.Customer, filter.Customer) {
			continue
		}
		matched = append(matched, l)
	}

	return r.store.pageLoansLocked(matched, req), nil
}

func (r *loanRepo) FindByBook(_ context.Context, bookID uuid.UUID, req paging.PageRequest) (paging.Page[circulation.Loan], error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []circulation.Loan
	for _, l := range r.store.loans {
		if l.BookID == bookID {
			matched = append(matched, l)
		}
	}

	return r.store.pageLoansLocked(matched, req), nil
}

func (r *loanRepo) FindLateLoans(_ context.Context, cutoff time.Time) ([]*circulation.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var late []*circulation.Loan
	for _, l := range r.store.loans {
		if l.Open() && l.LoanDate.Before(cutoff) {
			l := l
			r.store.attachBookLocked(&l)
			late = append(late, &l)
		}
	}

	sort.Slice(late, func(i, j int) bool {
		return late[i].LoanDate.Before(late[j].LoanDate)
	})
	return late, nil
}

func (s *Store) hasOpenLoanLocked(bookID uuid.UUID) bool {
	return s.hasOtherOpenLoanLocked(bookID, uuid.Nil)
}

func (s *Store) hasOtherOpenLoanLocked(bookID, exclude uuid.UUID) bool {
	for _, l := range s.loans {
		if l.BookID == bookID && l.ID != exclude && l.Open() {
			return true
		}
	}
	return false
}

func (s *Store) attachBookLocked(l *circulation.Loan) {
	if b, ok := s.books[l.BookID]; ok {
		b := b
		l.Book = &b
	}
}

// pageLoansLocked orders loans newest-first with the id as tiebreaker so
// pagination is stable, then slices out the requested page.
func (s *Store) pageLoansLocked(matched []circulation.Loan, req paging.PageRequest) paging.Page[circulation.Loan] {
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].LoanDate.Equal(matched[j].LoanDate) {
			return matched[i].LoanDate.After(matched[j].LoanDate)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	items := slicePage(matched, req)
	for i := range items {
		s.attachBookLocked(&items[i])
	}
	return paging.NewPage(items, len(matched), req)
}

func matchSubstring(value, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(want))
}

func slicePage[T any](items []T, req paging.PageRequest) []T {
	req = req.Normalize()
	start := req.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + req.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
