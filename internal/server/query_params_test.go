package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOptionalTime(t *testing.T) {
	empty, err := parseOptionalTime("  ", false)
	assert.NoError(t, err)
	assert.Nil(t, empty)

	stamped, err := parseOptionalTime("2024-05-01T10:30:00+02:00", false)
	assert.NoError(t, err)
	if assert.NotNil(t, stamped) {
		assert.Equal(t, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC), *stamped)
	}

	start, err := parseOptionalTime("2024-05-01", false)
	assert.NoError(t, err)
	if assert.NotNil(t, start) {
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *start)
	}

	end, err := parseOptionalTime("2024-05-01", true)
	assert.NoError(t, err)
	if assert.NotNil(t, end) {
		assert.Equal(t, time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), *end)
	}

	_, err = parseOptionalTime("01-05-2024", false)
	assert.Error(t, err)
}
