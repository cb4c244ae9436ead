package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListFilterNormalized(t *testing.T) {
	f := ListFilter{}.Normalized()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)

	f = ListFilter{Page: -3, Limit: 0}.Normalized()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)

	f = ListFilter{Page: 3, Limit: 5}.Normalized()
	assert.Equal(t, 10, f.Offset())
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(ListFilter{Page: 2, Limit: 5}, 12)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.Limit)
	assert.Equal(t, 12, p.Total)
	assert.Equal(t, 3, p.TotalPages)

	p = NewPagination(ListFilter{Page: 1, Limit: 25}, 0)
	assert.Equal(t, 0, p.Total)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPagination(ListFilter{Page: 1, Limit: 25}, 25)
	assert.Equal(t, 1, p.TotalPages)

	p = NewPagination(ListFilter{Page: 1, Limit: 25}, 26)
	assert.Equal(t, 2, p.TotalPages)
}
