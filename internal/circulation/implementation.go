// internal/circulation/implementation.go
package circulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"libris/internal/catalog"
	"libris/internal/paging"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	books  Books
	logger *zap.Logger
}

// NewService creates a new circulation service instance.
func NewService(repo Repository, books Books, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		books:  books,
		logger: logger,
	}
}

// Create lends a book to a customer. The open-loan check is a fast path;
// the storage constraint on "book + open loan" is the guarantee, so Save
// can still report ErrBookUnavailable under races.
func (s *service) Create(ctx context.Context, isbn, customer, customerEmail string) (*Loan, error) {
	ctx, span := otel.Tracer("libris/circulation").Start(ctx, "circulation.create")
	defer span.End()
	span.SetAttributes(attribute.String("book.isbn", isbn))

	book, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to resolve book: %w", err)
	}

	taken, err := s.repo.HasOpenLoan(ctx, book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open loan: %w", err)
	}
	if taken {
		return nil, ErrBookUnavailable
	}

	loan := &Loan{
		BookID:        book.ID,
		Book:          book,
		Customer:      customer,
		CustomerEmail: customerEmail,
		LoanDate:      today(),
	}
	if err := s.repo.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("isbn", book.ISBN),
		zap.String("customer", customer))

	return loan, nil
}

// GetByID retrieves a loan by its ID. A miss is ErrNotFound.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.repo.FindByID(ctx, id)
}

// MarkReturned sets the loan's returned flag and re-persists. This is the
// sole state transition a loan has; once closed it stays closed, though
// repeating the call is harmless.
func (s *service) MarkReturned(ctx context.Context, id uuid.UUID, returned bool) (*Loan, error) {
	ctx, span := otel.Tracer("libris/circulation").Start(ctx, "circulation.mark_returned")
	defer span.End()

	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	loan.Returned = &returned

	if err := s.repo.Save(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	s.logger.Info("loan returned",
		zap.String("loan_id", loan.ID.String()),
		zap.Bool("returned", returned))

	return loan, nil
}

// Find is a pass-through to the repository filter query.
func (s *service) Find(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Loan], error) {
	return s.repo.FindByFilter(ctx, filter, req)
}

// FindByBook lists all loans, open and closed, for one book.
func (s *service) FindByBook(ctx context.Context, bookID uuid.UUID, req paging.PageRequest) (paging.Page[Loan], error) {
	return s.repo.FindByBook(ctx, bookID, req)
}

// FindLateLoans returns all open loans whose loan date precedes
// today minus thresholdDays.
func (s *service) FindLateLoans(ctx context.Context, thresholdDays int) ([]*Loan, error) {
	cutoff := today().AddDate(0, 0, -thresholdDays)
	return s.repo.FindLateLoans(ctx, cutoff)
}

// today truncates the current time to a calendar date, matching the
// loan_date column granularity.
func today() time.Time {
	y, m, d := time.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
