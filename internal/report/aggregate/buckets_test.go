package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(now time.Time, daysAgo float64) *time.Time {
	t := now.Add(-time.Duration(daysAgo * 24 * float64(time.Hour)))
	return &t
}

func TestBucketByAge(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []*time.Time{
		ts(now, 0),
		ts(now, 7),
		ts(now, 7.5),
		ts(now, 14),
		ts(now, 20),
		ts(now, 28),
		ts(now, 29),
		ts(now, 400),
		nil,
	}

	buckets := BucketByAge(records, func(p *time.Time) *time.Time { return p }, now, nil)
	require.Len(t, buckets, 4)

	assert.Equal(t, "0-7 days", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, ">7-14 days", buckets[1].Label)
	assert.Equal(t, 2, buckets[1].Count)
	assert.Equal(t, ">14-28 days", buckets[2].Label)
	assert.Equal(t, 2, buckets[2].Count)
	assert.Equal(t, "Over 28 days", buckets[3].Label)
	assert.Equal(t, 2, buckets[3].Count)

	// Buckets are exhaustive over parseable timestamps; the nil is excluded.
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, len(records)-1, total)
}

func TestBucketByAgeBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []*time.Time{ts(now, 14)}

	buckets := BucketByAge(records, func(p *time.Time) *time.Time { return p }, now, []int{7, 14, 28})

	// Exactly 14.0 days belongs to (7,14], not (14,28].
	assert.Equal(t, 1, buckets[1].Count)
	assert.Equal(t, 0, buckets[2].Count)
}

func TestBucketByAgeLabelsMatchOpenLowerBound(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []*time.Time{ts(now, 7.5)}

	buckets := BucketByAge(records, func(p *time.Time) *time.Time { return p }, now, []int{7, 14, 28})

	// A record 7.5 days old sits in the second bucket, whose label must
	// cover it rather than start at day 8.
	assert.Equal(t, ">7-14 days", buckets[1].Label)
	assert.Equal(t, 1, buckets[1].Count)
}

func TestBucketByAgeEmptyInput(t *testing.T) {
	t.Parallel()

	buckets := BucketByAge[*time.Time](nil, func(p *time.Time) *time.Time { return p }, time.Now(), nil)
	require.Len(t, buckets, 4)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
	}
}
