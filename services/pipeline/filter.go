package pipeline

import (
	"strings"
	"time"

	"souqscrape/lib/timezone"
)

// FilterByDate keeps the records published on the target date. The
// marketplace renders date_published as "YYYY-MM-DD HH:MM", so a record
// matches when the prefix up to the first whitespace equals the target.
// Records with a missing or malformed date are dropped silently; they
// are routine on listing pages, not an error.
func FilterByDate(records []Record, target time.Time) []Record {
	targetDay := timezone.DateString(target)

	var matched []Record
	for _, record := range records {
		fields := strings.Fields(record[datePublishedField])
		if len(fields) == 0 {
			continue
		}
		if fields[0] == targetDay {
			matched = append(matched, record)
		}
	}
	return matched
}
