package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Pagination{Offset: 0, Limit: 50}, Pagination{Offset: -5, Limit: 0}.Normalize())
	assert.Equal(t, Pagination{Offset: 10, Limit: 250}, Pagination{Offset: 10, Limit: 999}.Normalize())
	assert.Equal(t, Pagination{Offset: 3, Limit: 20}, Pagination{Offset: 3, Limit: 20}.Normalize())
}
