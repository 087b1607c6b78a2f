package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enrollment struct {
	serial string
	order  int
}

func TestFindDuplicates(t *testing.T) {
	t.Parallel()

	records := []enrollment{
		{"SN1", 3},
		{"SN2", 1},
		{"SN1", 1},
		{"SN1", 2},
		{"", 9},
		{"", 9},
	}

	dups := FindDuplicates(records,
		func(e enrollment) string { return e.serial },
		func(a, b enrollment) bool { return a.order < b.order },
	)

	// Three SN1 enrollments form one group, ordered by enrollment time;
	// the singleton SN2 and the blank serials are excluded.
	require.Len(t, dups, 3)
	for i, e := range dups {
		assert.Equal(t, "SN1", e.serial)
		assert.Equal(t, i+1, e.order)
	}
}

func TestFindDuplicatesOrdersGroupsByKey(t *testing.T) {
	t.Parallel()

	records := []enrollment{
		{"ZZZ", 1}, {"AAA", 2}, {"ZZZ", 2}, {"AAA", 1},
	}

	dups := FindDuplicates(records,
		func(e enrollment) string { return e.serial },
		func(a, b enrollment) bool { return a.order < b.order },
	)

	require.Len(t, dups, 4)
	assert.Equal(t, "AAA", dups[0].serial)
	assert.Equal(t, 1, dups[0].order)
	assert.Equal(t, "ZZZ", dups[2].serial)
}

func TestFindDuplicatesNone(t *testing.T) {
	t.Parallel()

	records := []enrollment{{"A", 1}, {"B", 1}}
	dups := FindDuplicates(records,
		func(e enrollment) string { return e.serial },
		func(a, b enrollment) bool { return a.order < b.order },
	)
	assert.Empty(t, dups)
}
