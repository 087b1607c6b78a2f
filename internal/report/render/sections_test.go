package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-reports/internal/report/aggregate"
)

func TestCollapse(t *testing.T) {
	t.Parallel()

	entries := make([]aggregate.Entry, 12)
	for i := range entries {
		entries[i] = aggregate.Entry{Label: fmt.Sprintf("entry-%d", i), Count: 12 - i}
	}

	collapsed := Collapse(entries, 10)

	// Budget of 10 yields at most 10 visible rows: the top 9 verbatim plus
	// one Other row summing entries 10 through 12.
	require.Len(t, collapsed, 10)
	for i := 0; i < 9; i++ {
		assert.Equal(t, entries[i], collapsed[i])
	}
	assert.Equal(t, OtherLabel, collapsed[9].Label)
	assert.Equal(t, 3+2+1, collapsed[9].Count)
}

func TestCollapsePreservesTotal(t *testing.T) {
	t.Parallel()

	entries := []aggregate.Entry{
		{Label: "a", Count: 5}, {Label: "b", Count: 4}, {Label: "c", Count: 3},
		{Label: "d", Count: 2}, {Label: "e", Count: 1},
	}
	collapsed := Collapse(entries, 3)

	require.Len(t, collapsed, 3)
	assert.Equal(t, aggregate.Total(entries), aggregate.Total(collapsed))
}

func TestCollapseNoop(t *testing.T) {
	t.Parallel()

	entries := []aggregate.Entry{{Label: "a", Count: 1}, {Label: "b", Count: 1}}

	assert.Equal(t, entries, Collapse(entries, 0))
	assert.Equal(t, entries, Collapse(entries, 2))
	assert.Equal(t, entries, Collapse(entries, 5))
}
