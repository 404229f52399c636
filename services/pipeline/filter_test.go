package pipeline

import (
	"testing"
	"time"

	"souqscrape/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFilterByDate(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)

	records := []Record{
		{"title": "match", "date_published": "2024-01-15 10:00"},
		{"title": "tab separator", "date_published": "2024-01-15\t23:59"},
		{"title": "day after", "date_published": "2024-01-16 10:00"},
		{"title": "day before", "date_published": "2024-01-14 00:01"},
		{"title": "date only", "date_published": "2024-01-15"},
		{"title": "empty date", "date_published": ""},
		{"title": "missing date"},
		{"title": "whitespace only", "date_published": "   "},
	}

	got := FilterByDate(records, target)
	want := []Record{
		{"title": "match", "date_published": "2024-01-15 10:00"},
		{"title": "tab separator", "date_published": "2024-01-15\t23:59"},
		{"title": "date only", "date_published": "2024-01-15"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected filter result (-want +got):\n%s", diff)
	}
}

func TestFilterByDateEmptyInput(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)
	require.Empty(t, FilterByDate(nil, target))
	require.Empty(t, FilterByDate([]Record{}, target))
}
