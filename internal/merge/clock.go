package merge

import "time"

// Clock supplies "today" in the reference timezone. Every month-boundary and
// current-month decision goes through this single source.
type Clock interface {
	Today() time.Time
}

// ISTZone is the reference timezone of the snapshot source.
var ISTZone = time.FixedZone("IST", 5*3600+30*60)

// SystemClock reports the wall clock in the reference timezone.
type SystemClock struct{}

func (SystemClock) Today() time.Time {
	return time.Now().In(ISTZone)
}

// FixedClock pins "today" for tests and replays.
type FixedClock struct {
	Now time.Time
}

func (c FixedClock) Today() time.Time {
	return c.Now
}

// lastUpdatedLayout matches the display stamp of the published files.
const lastUpdatedLayout = "03:04 PM, 02 January 2006"

// Stamp renders the localized lastUpdated display string.
func Stamp(c Clock) string {
	return c.Today().Format(lastUpdatedLayout)
}
