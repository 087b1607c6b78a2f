package aggregate

import (
	"fmt"
	"time"
)

// DefaultAgeBoundaries are the sync-age bucket upper bounds in days.
var DefaultAgeBoundaries = []int{7, 14, 28}

// AgeBucket is one histogram row.
type AgeBucket struct {
	Label string
	Count int
}

// BucketByAge assigns each record with a non-nil timestamp to exactly one
// elapsed-days bucket. For boundaries [7,14,28] the buckets are [0,7],
// (7,14], (14,28] and (28,∞): the largest boundary is tested first, so a
// record exactly 14 days old lands in (7,14]. Records with a nil timestamp
// are excluded from every bucket.
func BucketByAge[T any](records []T, at func(T) *time.Time, now time.Time, boundaries []int) []AgeBucket {
	if len(boundaries) == 0 {
		boundaries = DefaultAgeBoundaries
	}

	buckets := make([]AgeBucket, len(boundaries)+1)
	for i, b := range boundaries {
		if i == 0 {
			buckets[i].Label = fmt.Sprintf("0-%d days", b)
		} else {
			// The lower bound is open, so the label says so: 7.5 days old
			// belongs to ">7-14 days", not to an "8-14" that excludes it.
			buckets[i].Label = fmt.Sprintf(">%d-%d days", boundaries[i-1], b)
		}
	}
	buckets[len(boundaries)].Label = fmt.Sprintf("Over %d days", boundaries[len(boundaries)-1])

	for _, r := range records {
		t := at(r)
		if t == nil {
			continue
		}
		days := now.Sub(*t).Hours() / 24

		idx := 0
		for i := len(boundaries) - 1; i >= 0; i-- {
			if days > float64(boundaries[i]) {
				idx = i + 1
				break
			}
		}
		buckets[idx].Count++
	}
	return buckets
}
