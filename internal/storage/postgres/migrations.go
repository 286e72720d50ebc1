// internal/storage/postgres/migrations.go
package postgres

import (
	"context"
	"fmt"
)

// ddl is applied in order and is idempotent. loans.book_id carries no
// foreign key: loans are independently-owned history and must survive the
// deletion of their book from the catalog. The partial unique index is the
// authoritative guard for the single-open-loan-per-book invariant.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT books_isbn_key UNIQUE (isbn)
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		id UUID PRIMARY KEY,
		book_id UUID NOT NULL,
		customer TEXT NOT NULL,
		customer_email TEXT,
		loan_date DATE NOT NULL,
		returned BOOLEAN
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS loans_open_book_idx
		ON loans (book_id) WHERE returned IS NOT TRUE`,
	`CREATE INDEX IF NOT EXISTS loans_book_id_idx ON loans (book_id)`,
	`CREATE INDEX IF NOT EXISTS loans_loan_date_idx ON loans (loan_date)`,
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// Truncate empties all tables. Test helper.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE TABLE loans, books`); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
