// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"libris/internal/paging"
)

// service implements the Service interface.
type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new catalog service instance.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

// Create persists a new book after checking that the ISBN is free.
// The check is a fast path; the storage uniqueness constraint is the
// guarantee, so Save can still report ErrDuplicateISBN under races.
func (s *service) Create(ctx context.Context, title, author, isbn string) (*Book, error) {
	ctx, span := otel.Tracer("libris/catalog").Start(ctx, "catalog.create")
	defer span.End()
	span.SetAttributes(attribute.String("book.isbn", isbn))

	exists, err := s.repo.ExistsByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("failed to check isbn: %w", err)
	}
	if exists {
		return nil, ErrDuplicateISBN
	}

	book := &Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	s.logger.Info("book created",
		zap.String("book_id", book.ID.String()),
		zap.String("isbn", book.ISBN))

	return book, nil
}

// GetByID retrieves a book by its ID. A miss is ErrNotFound, which is a
// normal outcome, not a failure.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByISBN retrieves a book by its ISBN, mirroring GetByID's contract.
func (s *service) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	return s.repo.FindByISBN(ctx, isbn)
}

// Update overwrites the book's title and author. ISBN and ID are immutable.
func (s *service) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Book, error) {
	ctx, span := otel.Tracer("libris/catalog").Start(ctx, "catalog.update")
	defer span.End()

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = patch.Title
	book.Author = patch.Author
	book.UpdatedAt = time.Now()

	if err := s.repo.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	s.logger.Info("book updated", zap.String("book_id", book.ID.String()))

	return book, nil
}

// Delete removes a book. Loans are not cascaded; they remain as history
// owned by circulation.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := otel.Tracer("libris/catalog").Start(ctx, "catalog.delete")
	defer span.End()

	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, book); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.logger.Info("book deleted",
		zap.String("book_id", book.ID.String()),
		zap.String("isbn", book.ISBN))

	return nil
}

// Find is a pass-through to the repository filter query.
func (s *service) Find(ctx context.Context, filter Filter, req paging.PageRequest) (paging.Page[Book], error) {
	return s.repo.FindByFilter(ctx, filter, req)
}
