package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"souqscrape/lib/timezone"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// syncFetcher is safe for the orchestrator's concurrent category
// scrapes, unlike the single-goroutine stubFetcher.
type syncFetcher struct {
	mu    sync.Mutex
	pages map[string][]Record
}

func (f *syncFetcher) FetchCards(ctx context.Context, url string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[url], nil
}

type stubWriter struct {
	dir   string
	calls []string
}

func (w *stubWriter) Write(name string, records []Record) (string, error) {
	w.calls = append(w.calls, name)
	if len(records) == 0 {
		return "", nil
	}
	path := filepath.Join(w.dir, name+".xlsx")
	err := os.WriteFile(path, []byte("xlsx"), 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}

func fastOptions() Options {
	return Options{
		ChunkSize:        2,
		MaxConcurrent:    1,
		PageDelay:        time.Millisecond,
		ChunkDelay:       time.Millisecond,
		LaunchStagger:    time.Millisecond,
		UploadRetries:    2,
		UploadRetryDelay: time.Millisecond,
	}
}

func TestRunSkipsWriterForEmptyCategories(t *testing.T) {
	// every record is stale relative to yesterday, so nothing matches
	fetcher := &syncFetcher{pages: map[string][]Record{
		"https://site/paint/1": {
			{"title": "old ad", "date_published": "2020-01-01 09:00"},
		},
	}}
	writer := &stubWriter{dir: t.TempDir()}
	store := newStubStore()

	orch := NewOrchestrator([]CategorySpec{
		{Name: "paint", Sources: []Source{{URLTemplate: "https://site/paint/%d", Pages: 1}}},
	}, fetcher, writer, store, fastOptions())

	summary, err := orch.Run(context.Background())
	require.NoError(t, err)

	require.Empty(t, writer.calls, "writer must not see empty categories")
	require.Empty(t, store.uploadCalls)
	require.Len(t, summary.Outcomes, 1)
	require.Zero(t, summary.Outcomes[0].Matched)
	require.False(t, summary.Outcomes[0].Uploaded)
}

func TestRunDeletesOnlyConfirmedUploads(t *testing.T) {
	match := Record{
		"title":          "fresh ad",
		"date_published": timezone.DateString(timezone.Yesterday()) + " 10:30",
	}
	fetcher := &syncFetcher{pages: map[string][]Record{
		"https://site/alpha/1": {match},
		"https://site/beta/1":  {match},
	}}
	writer := &stubWriter{dir: t.TempDir()}
	store := newStubStore()
	// beta's spreadsheet never makes it up
	store.uploadFail[filepath.Join(writer.dir, "beta.xlsx")] = true

	orch := NewOrchestrator([]CategorySpec{
		{Name: "alpha", Sources: []Source{{URLTemplate: "https://site/alpha/%d", Pages: 1}}},
		{Name: "beta", Sources: []Source{{URLTemplate: "https://site/beta/%d", Pages: 1}}},
	}, fetcher, writer, store, fastOptions())

	summary, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Outcomes, 2)

	alpha, beta := summary.Outcomes[0], summary.Outcomes[1]
	require.True(t, alpha.Uploaded)
	require.False(t, beta.Uploaded)

	_, statErr := os.Stat(filepath.Join(writer.dir, "alpha.xlsx"))
	require.True(t, os.IsNotExist(statErr), "confirmed upload must be cleaned up")
	_, statErr = os.Stat(filepath.Join(writer.dir, "beta.xlsx"))
	require.NoError(t, statErr, "unconfirmed upload must stay on disk")
}

// gatedFetcher blocks every fetch until released and tracks how many
// are in flight at once.
type gatedFetcher struct {
	started chan string
	release chan struct{}

	mu      sync.Mutex
	active  int
	maxSeen int
}

func (f *gatedFetcher) FetchCards(ctx context.Context, url string) ([]Record, error) {
	f.mu.Lock()
	f.active++
	if f.active > f.maxSeen {
		f.maxSeen = f.active
	}
	f.mu.Unlock()

	f.started <- url
	<-f.release

	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	return nil, nil
}

func TestRunBoundsConcurrentScrapes(t *testing.T) {
	fetcher := &gatedFetcher{
		started: make(chan string, 4),
		release: make(chan struct{}),
	}
	writer := &stubWriter{dir: t.TempDir()}
	store := newStubStore()

	opts := fastOptions()
	opts.ChunkSize = 4
	opts.MaxConcurrent = 2

	categories := make([]CategorySpec, 4)
	for i := range categories {
		name := fmt.Sprintf("cat-%d", i)
		categories[i] = CategorySpec{
			Name:    name,
			Sources: []Source{{URLTemplate: "https://site/" + name + "/%d", Pages: 1}},
		}
	}

	orch := NewOrchestrator(categories, fetcher, writer, store, opts)

	type runResult struct {
		summary Summary
		err     error
	}
	done := make(chan runResult, 1)
	go func() {
		summary, err := orch.Run(context.Background())
		done <- runResult{summary, err}
	}()

	// two scrapes get admitted and hold their slots; the other two must
	// be parked on the semaphore until the first pair finishes
	first := <-fetcher.started
	second := <-fetcher.started
	require.NotEqual(t, first, second)
	close(fetcher.release)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.summary.Outcomes, 4)
	require.Equal(t, 2, fetcher.maxSeen)
}

func TestRunAbortsOnAuthenticationFailure(t *testing.T) {
	store := newStubStore()
	store.authErr = fmt.Errorf("bad credentials")
	writer := &stubWriter{dir: t.TempDir()}

	orch := NewOrchestrator([]CategorySpec{
		{Name: "alpha", Sources: []Source{{URLTemplate: "https://site/alpha/%d", Pages: 1}}},
	}, &syncFetcher{}, writer, store, fastOptions())

	_, err := orch.Run(context.Background())
	require.Error(t, err)
	require.Empty(t, writer.calls)
}

func TestChunkCategories(t *testing.T) {
	named := func(names ...string) []CategorySpec {
		specs := make([]CategorySpec, len(names))
		for i, name := range names {
			specs[i] = CategorySpec{Name: name}
		}
		return specs
	}

	cases := []struct {
		name       string
		categories []CategorySpec
		size       int
		expected   [][]CategorySpec
	}{
		{
			name:       "uneven tail",
			categories: named("a", "b", "c", "d", "e"),
			size:       2,
			expected: [][]CategorySpec{
				named("a", "b"),
				named("c", "d"),
				named("e"),
			},
		},
		{
			name:       "exact multiple",
			categories: named("a", "b", "c", "d"),
			size:       2,
			expected: [][]CategorySpec{
				named("a", "b"),
				named("c", "d"),
			},
		},
		{
			name:       "size exceeds input",
			categories: named("a", "b"),
			size:       10,
			expected:   [][]CategorySpec{named("a", "b")},
		},
		{
			name:       "empty input",
			categories: nil,
			size:       2,
			expected:   nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := chunkCategories(c.categories, c.size)
			diff := cmp.Diff(c.expected, got)
			require.Empty(t, diff)
		})
	}
}
