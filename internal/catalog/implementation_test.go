// internal/catalog/implementation_test.go
package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"libris/internal/catalog"
	"libris/internal/paging"
	"libris/internal/storage/memory"
)

func newService(t *testing.T) catalog.Service {
	t.Helper()
	return catalog.NewService(memory.New().Books(), zap.NewNop())
}

func TestCreateBook(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	book, err := svc.Create(ctx, "Java World", "John Doe", "123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.ID)
	assert.Equal(t, "Java World", book.Title)
	assert.Equal(t, "123", book.ISBN)
}

func TestCreateBookDuplicateISBN(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Java World", "John Doe", "123")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Another Title", "Jane Doe", "123")
	assert.ErrorIs(t, err, catalog.ErrDuplicateISBN)
}

func TestGetBookByIDMiss(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestGetBookByISBN(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Java World", "John Doe", "123")
	require.NoError(t, err)

	found, err := svc.GetByISBN(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.GetByISBN(ctx, "does-not-exist")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdateBook(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Java World", "John Doe", "123")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, catalog.Patch{Title: "Go World", Author: "Jane Doe"})
	require.NoError(t, err)
	assert.Equal(t, "Go World", updated.Title)
	assert.Equal(t, "Jane Doe", updated.Author)

	// id and isbn are immutable
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "123", updated.ISBN)
}

func TestUpdateBookNotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.Update(context.Background(), uuid.New(), catalog.Patch{Title: "x"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Java World", "John Doe", "123")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// isbn is free again after deletion
	_, err = svc.Create(ctx, "Java World", "John Doe", "123")
	assert.NoError(t, err)
}

func TestDeleteBookNotFound(t *testing.T) {
	svc := newService(t)

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestFindBooksByFilter(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "The Go Programming Language", "Donovan", "111")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Go in Action", "Kennedy", "222")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Clean Code", "Martin", "333")
	require.NoError(t, err)

	page, err := svc.Find(ctx, catalog.Filter{Title: "go"}, paging.PageRequest{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	assert.Len(t, page.Items, 2)

	// unset fields match anything
	page, err = svc.Find(ctx, catalog.Filter{}, paging.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, paging.DefaultSize, page.Size)
}

func TestFindBooksPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, isbn := range []string{"1", "2", "3", "4", "5"} {
		_, err := svc.Create(ctx, "Book "+isbn, "Author", isbn)
		require.NoError(t, err)
	}

	first, err := svc.Find(ctx, catalog.Filter{}, paging.PageRequest{Number: 1, Size: 2})
	require.NoError(t, err)
	second, err := svc.Find(ctx, catalog.Filter{}, paging.PageRequest{Number: 2, Size: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, first.TotalCount)
	assert.Len(t, first.Items, 2)
	assert.Len(t, second.Items, 2)
	assert.NotEqual(t, first.Items[0].ID, second.Items[0].ID)
	assert.Equal(t, 2, second.Number)
}
