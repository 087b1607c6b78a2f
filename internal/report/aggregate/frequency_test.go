package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountBy(t *testing.T) {
	t.Parallel()

	records := []string{"Surface", "iPhone", "Surface", "", "Pixel", "iPhone", "Surface"}
	entries := CountBy(records, func(s string) string { return s }, "Unknown Model")

	require.Len(t, entries, 4)
	assert.Equal(t, Entry{Label: "Surface", Count: 3}, entries[0])
	assert.Equal(t, Entry{Label: "iPhone", Count: 2}, entries[1])

	// Every record contributes exactly once, blanks under the sentinel.
	assert.Equal(t, len(records), Total(entries))
}

func TestCountByTiesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	records := []string{"b", "a", "c", "a", "b", "c"}
	entries := CountBy(records, func(s string) string { return s }, "Unknown")

	require.Len(t, entries, 3)
	assert.Equal(t, "b", entries[0].Label)
	assert.Equal(t, "a", entries[1].Label)
	assert.Equal(t, "c", entries[2].Label)
}

func TestCountByAllBlank(t *testing.T) {
	t.Parallel()

	records := []string{"", "", ""}
	entries := CountBy(records, func(s string) string { return s }, "Uncategorized")

	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Label: "Uncategorized", Count: 3}, entries[0])
}

func TestCountByEmptyInput(t *testing.T) {
	t.Parallel()

	entries := CountBy(nil, func(s string) string { return s }, "Unknown")
	assert.Empty(t, entries)
	assert.Equal(t, 0, Total(entries))
}
