package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	var p PageRequest
	p.Defaults()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = PageRequest{Page: 3, PageSize: 10}
	p.Defaults()
	assert.Equal(t, 20, p.Offset())
}

func TestUnbounded(t *testing.T) {
	p := All
	p.Defaults()
	assert.True(t, p.Unbounded())
	assert.Equal(t, 0, p.Offset())
}

func TestNewPageResponse(t *testing.T) {
	resp := NewPageResponse([]int{1, 2}, 1, 2, 5)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(5), resp.TotalItems)

	empty := NewPageResponse[int](nil, 1, 10, 0)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)

	all := NewPageResponse([]int{1, 2, 3}, 1, -1, 3)
	assert.Equal(t, 1, all.TotalPages)
	assert.Equal(t, 3, all.PageSize)
}
