package app

import "time"

// fromUnixMilli converts the epoch-millisecond deadlines used on the wire
// into UTC instants.
func fromUnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
