// internal/circulation/implementation_test.go
package circulation_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris/internal/catalog"
	"libris/internal/circulation"
	"libris/internal/paging"
	"libris/internal/storage/memory"
)

type fixture struct {
	books catalog.Service
	loans circulation.Service
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	books := catalog.NewService(store.Books(), zap.NewNop())
	loans := circulation.NewService(store.Loans(), books, zap.NewNop())
	return &fixture{books: books, loans: loans, store: store}
}

func (f *fixture) createBook(t *testing.T, isbn string) *catalog.Book {
	t.Helper()
	book, err := f.books.Create(context.Background(), "Java World", "John Doe", isbn)
	require.NoError(t, err)
	return book
}

func TestCreateLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "123")

	loan, err := f.loans.Create(ctx, "123", "Pessoa", "pessoa@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, loan.ID)
	assert.Equal(t, book.ID, loan.BookID)
	assert.Equal(t, "Pessoa", loan.Customer)
	assert.True(t, loan.Open())
}

func TestCreateLoanBookNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.loans.Create(context.Background(), "no-such-isbn", "Pessoa", "")
	assert.ErrorIs(t, err, circulation.ErrBookNotFound)
}

func TestCreateLoanBookUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "123")

	_, err := f.loans.Create(ctx, "123", "Pessoa", "")
	require.NoError(t, err)

	_, err = f.loans.Create(ctx, "123", "Someone Else", "")
	assert.ErrorIs(t, err, circulation.ErrBookUnavailable)
}

func TestMarkReturned(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "123")

	loan, err := f.loans.Create(ctx, "123", "Pessoa", "")
	require.NoError(t, err)

	returned, err := f.loans.MarkReturned(ctx, loan.ID, true)
	require.NoError(t, err)
	require.NotNil(t, returned.Returned)
	assert.True(t, *returned.Returned)
	assert.False(t, returned.Open())

	// idempotent in outcome: repeating the call keeps the loan closed
	returned, err = f.loans.MarkReturned(ctx, loan.ID, true)
	require.NoError(t, err)
	assert.False(t, returned.Open())
}

func TestMarkReturnedReopenConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "123")

	first, err := f.loans.Create(ctx, "123", "Pessoa", "")
	require.NoError(t, err)
	_, err = f.loans.MarkReturned(ctx, first.ID, true)
	require.NoError(t, err)

	second, err := f.loans.Create(ctx, "123", "Other", "")
	require.NoError(t, err)

	// un-returning the old loan while the book is out again would put
	// two open loans on one book
	_, err = f.loans.MarkReturned(ctx, first.ID, false)
	require.ErrorIs(t, err, circulation.ErrBookUnavailable)

	// the current loan is untouched
	current, err := f.loans.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, current.Open())
}

func TestMarkReturnedNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.loans.MarkReturned(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, circulation.ErrNotFound)
}

func TestLoanLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "123")

	loan, err := f.loans.Create(ctx, "123", "Pessoa", "")
	require.NoError(t, err)
	assert.Equal(t, book.ID, loan.BookID)

	// the book is out, a second borrower is rejected
	_, err = f.loans.Create(ctx, "123", "Other", "")
	require.ErrorIs(t, err, circulation.ErrBookUnavailable)

	// after the return it can be lent again
	_, err = f.loans.MarkReturned(ctx, loan.ID, true)
	require.NoError(t, err)

	second, err := f.loans.Create(ctx, "123", "Other", "")
	require.NoError(t, err)
	assert.True(t, second.Open())

	// both loans remain as history for the book
	page, err := f.loans.FindByBook(ctx, book.ID, paging.PageRequest{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
}

func TestFindLoansByFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "123")
	f.createBook(t, "456")

	first, err := f.loans.Create(ctx, "123", "Pessoa", "")
	require.NoError(t, err)
	_, err = f.loans.Create(ctx, "456", "Other", "")
	require.NoError(t, err)

	page, err := f.loans.Find(ctx, circulation.Filter{ISBN: "123"}, paging.PageRequest{Number: 1, Size: 5})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	assert.Equal(t, first.ID, page.Items[0].ID)
	require.NotNil(t, page.Items[0].Book)
	assert.Equal(t, "123", page.Items[0].Book.ISBN)

	// pagination parameters are echoed back
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 5, page.Size)

	byCustomer, err := f.loans.Find(ctx, circulation.Filter{Customer: "pessoa"}, paging.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, byCustomer.TotalCount)
}

func TestFindLateLoans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late := f.createBook(t, "111")
	fresh := f.createBook(t, "222")

	// seed an open loan five days old directly through the repository
	lateLoan := &circulation.Loan{
		BookID:   late.ID,
		Customer: "Pessoa",
		LoanDate: time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -5),
	}
	require.NoError(t, f.store.Loans().Save(ctx, lateLoan))

	_, err := f.loans.Create(ctx, fresh.ISBN, "Other", "")
	require.NoError(t, err)

	result, err := f.loans.FindLateLoans(ctx, 4)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, lateLoan.ID, result[0].ID)

	// a returned late loan is no longer reported
	_, err = f.loans.MarkReturned(ctx, lateLoan.ID, true)
	require.NoError(t, err)

	result, err = f.loans.FindLateLoans(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, result)
}
