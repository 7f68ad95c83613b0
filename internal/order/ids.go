package order

import (
	"strconv"
	"time"
)

// nextID returns the creation time in milliseconds, bumped past every id
// already in use so that creates within one millisecond stay unique.
func nextID(now time.Time, orders []Order) string {
	candidate := now.UnixMilli()
	taken := make(map[string]struct{}, len(orders))

	for _, o := range orders {
		taken[o.ID] = struct{}{}
		if n, err := strconv.ParseInt(o.ID, 10, 64); err == nil && n >= candidate {
			candidate = n + 1
		}
	}

	for {
		id := strconv.FormatInt(candidate, 10)
		if _, dup := taken[id]; !dup {
			return id
		}
		candidate++
	}
}

// Less orders ids numerically when both parse, lexically otherwise.
func Less(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
