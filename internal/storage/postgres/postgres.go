// internal/storage/postgres/postgres.go

// Package postgres implements the catalog and circulation repositories on
// PostgreSQL. The business invariants are backed by constraints rather
// than by the services' precondition checks: a unique index on books.isbn
// and a partial unique index on open loans per book. Unique violations are
// translated back into the domain errors.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/paging"
)

const (
	constraintBookISBN = "books_isbn_key"
	constraintOpenLoan = "loans_open_book_idx"

	pqUniqueViolation = "23505"
)

var dialect = goqu.Dialect("postgres")

// Store wraps a database handle and hands out repository views.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a Store from an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the given database URL and verifies the connection.
func Open(dbURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewStore(db), nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Books returns the catalog repository view of the store.
func (s *Store) Books() catalog.Repository {
	return &bookRepo{db: s.db}
}

// Loans returns the circulation repository view of the store.
func (s *Store) Loans() circulation.Repository {
	return &loanRepo{db: s.db}
}

// escapeLike escapes LIKE metacharacters so filter values always match
// literally, the way the in-memory store's substring match does.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// mapUniqueViolation translates a unique-constraint violation into the
// domain error for the constraint that fired.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		switch pqErr.Constraint {
		case constraintBookISBN:
			return catalog.ErrDuplicateISBN
		case constraintOpenLoan:
			return circulation.ErrBookUnavailable
		}
	}
	return err
}

type bookRepo struct {
	db *sqlx.DB
}

func (r *bookRepo) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	query, args, err := dialect.From("books").
		Select(goqu.COUNT("*")).
		Where(goqu.C("isbn").Eq(isbn)).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check isbn: %w", err)
	}
	return count > 0, nil
}

func (r *bookRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	return r.findOne(ctx, goqu.C("id").Eq(id.String()))
}

func (r *bookRepo) FindByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	return r.findOne(ctx, goqu.C("isbn").Eq(isbn))
}

func (r *bookRepo) findOne(ctx context.Context, cond goqu.Expression) (*catalog.Book, error) {
	query, args, err := dialect.From("books").
		Select("id", "title", "author", "isbn", "created_at", "updated_at").
		Where(cond).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var book catalog.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// Save inserts a new book or updates the mutable columns of an existing
// one. The isbn column is deliberately left out of the update set; it is
// immutable after creation.
func (r *bookRepo) Save(ctx context.Context, book *catalog.Book) error {
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}

	query, args, err := dialect.Insert("books").
		Rows(goqu.Record{
			"id":         book.ID.String(),
			"title":      book.Title,
			"author":     book.Author,
			"isbn":       book.ISBN,
			"created_at": book.CreatedAt,
			"updated_at": book.UpdatedAt,
		}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"title":      book.Title,
			"author":     book.Author,
			"updated_at": book.UpdatedAt,
		})).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *bookRepo) Delete(ctx context.Context, book *catalog.Book) error {
	if book == nil || book.ID == uuid.Nil {
		return catalog.ErrNotFound
	}

	query, args, err := dialect.Delete("books").
		Where(goqu.C("id").Eq(book.ID.String())).
		Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (r *bookRepo) FindByFilter(ctx context.Context, filter catalog.Filter, req paging.PageRequest) (paging.Page[catalog.Book], error) {
	req = req.Normalize()

	ds := dialect.From("books")
	if filter.Title != "" {
		ds = ds.Where(goqu.C("title").ILike("%" + escapeLike(filter.Title) + "%"))
	}
	if filter.Author != "" {
		ds = ds.Where(goqu.C("author").ILike("%" + escapeLike(filter.Author) + "%"))
	}

	countQuery, countArgs, err := ds.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[catalog.Book]{}, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return paging.Page[catalog.Book]{}, fmt.Errorf("failed to count books: %w", err)
	}

	query, args, err := ds.
		Select("id", "title", "author", "isbn", "created_at", "updated_at").
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Limit(uint(req.Size)).
		Offset(uint(req.Offset())).
		Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[catalog.Book]{}, fmt.Errorf("failed to build select query: %w", err)
	}

	books := []catalog.Book{}
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return paging.Page[catalog.Book]{}, fmt.Errorf("failed to list books: %w", err)
	}

	return paging.NewPage(books, total, req), nil
}
