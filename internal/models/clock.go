package models

import "time"

// Now is the timestamp source for entity lifecycle fields. Values are UTC with
// microsecond precision so they survive a round trip through a stored record.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
