package pipeline

import (
	"time"

	"souqscrape/lib/timezone"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Outcome records what happened to one category over a run.
type Outcome struct {
	Category  string
	Matched   int
	LocalPath string
	Uploaded  bool
}

// Summary is the per-run report. Logs remain the primary channel; this
// exists so the CLI can print something a human can scan at a glance.
type Summary struct {
	Target   time.Time
	Outcomes []Outcome
}

func (s Summary) Render() string {
	t := table.NewWriter()
	t.SetTitle("scrape run for %s", timezone.DateString(s.Target))
	t.AppendHeader(table.Row{"category", "matched", "uploaded"})

	for _, outcome := range s.Outcomes {
		status := "-"
		switch {
		case outcome.Uploaded:
			status = "yes"
		case outcome.LocalPath != "":
			status = "failed (kept locally)"
		case outcome.Matched > 0:
			status = "failed (not staged)"
		}
		t.AppendRow(table.Row{outcome.Category, outcome.Matched, status})
	}

	return t.Render()
}
