package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-01-05T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", FormatDate(d))

	_, err = ParseDate("05/01/2025")
	assert.Error(t, err)
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*3600)
	late := time.Date(2025, 1, 4, 22, 30, 0, 0, time.UTC) // 01:30 next day in EAT
	assert.Equal(t, "2025-01-05", FormatDate(DateOf(late, loc)))
	assert.Equal(t, "2025-01-04", FormatDate(DateOf(late, nil)))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2025-01-05 00:00:00+00:00"))
	assert.Equal(t, "2025-01-05", FormatDate(d.Time))

	require.NoError(t, d.Scan([]byte("2025-02-01")))
	assert.Equal(t, "2025-02-01", FormatDate(d.Time))

	require.NoError(t, d.Scan(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-09", FormatDate(d.Time))

	assert.Error(t, d.Scan(42))
}
