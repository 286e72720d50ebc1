// internal/storage/postgres/loans.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/paging"
)

type loanRepo struct {
	db *sqlx.DB
}

// loanRow is the scan target for loan queries. Book columns come from a
// left join and are nullable: a loan outlives its book in the catalog.
type loanRow struct {
	ID            uuid.UUID      `db:"id"`
	BookID        uuid.UUID      `db:"book_id"`
	Customer      string         `db:"customer"`
	CustomerEmail sql.NullString `db:"customer_email"`
	LoanDate      time.Time      `db:"loan_date"`
	Returned      sql.NullBool   `db:"returned"`
	BookTitle     sql.NullString `db:"book_title"`
	BookAuthor    sql.NullString `db:"book_author"`
	BookISBN      sql.NullString `db:"book_isbn"`
}

func (row *loanRow) toLoan() *circulation.Loan {
	loan := &circulation.Loan{
		ID:            row.ID,
		BookID:        row.BookID,
		Customer:      row.Customer,
		CustomerEmail: row.CustomerEmail.String,
		LoanDate:      row.LoanDate,
	}
	if row.Returned.Valid {
		returned := row.Returned.Bool
		loan.Returned = &returned
	}
	if row.BookISBN.Valid {
		loan.Book = &catalog.Book{
			ID:     row.BookID,
			Title:  row.BookTitle.String,
			Author: row.BookAuthor.String,
			ISBN:   row.BookISBN.String,
		}
	}
	return loan
}

// loanSelect joins loans with what is left of their books in the catalog.
func loanSelect() *goqu.SelectDataset {
	return dialect.From(goqu.T("loans").As("l")).
		LeftJoin(
			goqu.T("books").As("b"),
			goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id"))),
		).
		Select(
			goqu.I("l.id").As("id"),
			goqu.I("l.book_id").As("book_id"),
			goqu.I("l.customer").As("customer"),
			goqu.I("l.customer_email").As("customer_email"),
			goqu.I("l.loan_date").As("loan_date"),
			goqu.I("l.returned").As("returned"),
			goqu.I("b.title").As("book_title"),
			goqu.I("b.author").As("book_author"),
			goqu.I("b.isbn").As("book_isbn"),
		)
}

func (r *loanRepo) HasOpenLoan(ctx context.Context, bookID uuid.UUID) (bool, error) {
	query, args, err := dialect.From("loans").
		Select(goqu.COUNT("*")).
		Where(
			goqu.C("book_id").Eq(bookID.String()),
			goqu.C("returned").IsNotTrue(),
		).
		Prepared(true).ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("failed to check open loan: %w", err)
	}
	return count > 0, nil
}

// Save inserts a new loan or updates the returned flag of an existing one.
// Book, customer and loan date never change after creation. Inserting a
// second open loan for the same book trips the partial unique index, which
// surfaces as ErrBookUnavailable.
func (r *loanRepo) Save(ctx context.Context, loan *circulation.Loan) error {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}

	var returned sql.NullBool
	if loan.Returned != nil {
		returned = sql.NullBool{Bool: *loan.Returned, Valid: true}
	}

	query, args, err := dialect.Insert("loans").
		Rows(goqu.Record{
			"id":             loan.ID.String(),
			"book_id":        loan.BookID.String(),
			"customer":       loan.Customer,
			"customer_email": loan.CustomerEmail,
			"loan_date":      loan.LoanDate,
			"returned":       returned,
		}).
		OnConflict(goqu.DoUpdate("id", goqu.Record{
			"returned": returned,
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

func (r *loanRepo) FindByID(ctx context.Context, id uuid.UUID) (*circulation.Loan, error) {
	query, args, err := loanSelect().
		Where(goqu.I("l.id").Eq(id.String())).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var row loanRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, circulation.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return row.toLoan(), nil
}

func (r *loanRepo) FindByFilter(ctx context.Context, filter circulation.Filter, req paging.PageRequest) (paging.Page[circulation.Loan], error) {
	conds := []goqu.Expression{}
	if filter.ISBN != "" {
		conds = append(conds, goqu.I("b.isbn").Eq(filter.ISBN))
	}
	if filter.Customer != "" {
		conds = append(conds, goqu.I("l.customer").ILike("%"+escapeLike(filter.Customer)+"%"))
	}
	return r.page(ctx, conds, req)
}

func (r *loanRepo) FindByBook(ctx context.Context, bookID uuid.UUID, req paging.PageRequest) (paging.Page[circulation.Loan], error) {
	conds := []goqu.Expression{goqu.I("l.book_id").Eq(bookID.String())}
	return r.page(ctx, conds, req)
}

func (r *loanRepo) FindLateLoans(ctx context.Context, cutoff time.Time) ([]*circulation.Loan, error) {
	query, args, err := loanSelect().
		Where(
			goqu.I("l.returned").IsNotTrue(),
			goqu.I("l.loan_date").Lt(cutoff),
		).
		Order(goqu.I("l.loan_date").Asc()).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows := []loanRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list late loans: %w", err)
	}

	loans := make([]*circulation.Loan, 0, len(rows))
	for i := range rows {
		loans = append(loans, rows[i].toLoan())
	}
	return loans, nil
}

// page runs the count and page queries for a filtered loan listing,
// ordered newest-first with the id as tiebreaker for stable pagination.
func (r *loanRepo) page(ctx context.Context, conds []goqu.Expression, req paging.PageRequest) (paging.Page[circulation.Loan], error) {
	req = req.Normalize()

	countQuery, countArgs, err := dialect.From(goqu.T("loans").As("l")).
		LeftJoin(
			goqu.T("books").As("b"),
			goqu.On(goqu.I("b.id").Eq(goqu.I("l.book_id"))),
		).
		Select(goqu.COUNT("*")).
		Where(conds...).
		Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[circulation.Loan]{}, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return paging.Page[circulation.Loan]{}, fmt.Errorf("failed to count loans: %w", err)
	}

	query, args, err := loanSelect().
		Where(conds...).
		Order(goqu.I("l.loan_date").Desc(), goqu.I("l.id").Desc()).
		Limit(uint(req.Size)).
		Offset(uint(req.Offset())).
		Prepared(true).ToSQL()
	if err != nil {
		return paging.Page[circulation.Loan]{}, fmt.Errorf("failed to build select query: %w", err)
	}

	rows := []loanRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return paging.Page[circulation.Loan]{}, fmt.Errorf("failed to list loans: %w", err)
	}

	loans := make([]circulation.Loan, 0, len(rows))
	for i := range rows {
		loans = append(loans, *rows[i].toLoan())
	}
	return paging.NewPage(loans, total, req), nil
}
