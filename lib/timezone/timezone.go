package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Kuwait")
	if err != nil {
		panic(err)
	}
}

// force timezone to be Kuwait's because the marketplace publishes listing
// dates in local time; a server that ends up in another region would
// compute the wrong "yesterday" around midnight
func Now() time.Time {
	return time.Now().In(Location)
}

// Yesterday returns the start of the previous day in the marketplace's
// timezone. A run computes this once and keys everything off the frozen
// value, both record filtering and destination folder naming.
func Yesterday() time.Time {
	y := Now().AddDate(0, 0, -1)
	return time.Date(y.Year(), y.Month(), y.Day(), 0, 0, 0, 0, Location)
}

// DateString renders a date the way listings and destination folders
// are named.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
