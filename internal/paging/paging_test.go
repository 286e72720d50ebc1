// internal/paging/paging_test.go
package paging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"libris/internal/paging"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   paging.PageRequest
		want paging.PageRequest
	}{
		{"zero value gets defaults", paging.PageRequest{}, paging.PageRequest{Number: 1, Size: paging.DefaultSize}},
		{"negative page", paging.PageRequest{Number: -3, Size: 10}, paging.PageRequest{Number: 1, Size: 10}},
		{"size clamped", paging.PageRequest{Number: 2, Size: 5000}, paging.PageRequest{Number: 2, Size: paging.MaxSize}},
		{"valid untouched", paging.PageRequest{Number: 4, Size: 25}, paging.PageRequest{Number: 4, Size: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, paging.PageRequest{Number: 1, Size: 20}.Offset())
	assert.Equal(t, 40, paging.PageRequest{Number: 3, Size: 20}.Offset())
	assert.Equal(t, 0, paging.PageRequest{}.Offset())
}

func TestParse(t *testing.T) {
	req := paging.Parse("3", "15")
	assert.Equal(t, paging.PageRequest{Number: 3, Size: 15}, req)

	// garbage falls back to defaults
	req = paging.Parse("abc", "")
	assert.Equal(t, paging.PageRequest{Number: 1, Size: paging.DefaultSize}, req)
}

func TestNewPageEchoesRequest(t *testing.T) {
	page := paging.NewPage([]int{1, 2, 3}, 9, paging.PageRequest{Number: 2, Size: 3})
	assert.Equal(t, 9, page.TotalCount)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 3, page.Size)
	assert.Len(t, page.Items, 3)
}
