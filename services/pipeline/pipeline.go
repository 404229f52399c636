package pipeline

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/pipeline")

// Record is one scraped listing card, a flat map of field names to
// values. Beyond date_published, which the filter keys off, the pipeline
// treats fields as opaque.
type Record = map[string]string

const datePublishedField = "date_published"

// Source is one paginated listing endpoint. URLTemplate carries a single
// %d placeholder for the page number.
type Source struct {
	URLTemplate string `json:"url_template"`
	Pages       int    `json:"pages"`
}

// CategorySpec names a group of sources scraped as a unit. The name is
// also the spreadsheet/file name on the store side. Categories are kept
// in a slice, not a map: chunk partitioning has to preserve the
// configured order across runs.
type CategorySpec struct {
	Name    string   `json:"name"`
	Sources []Source `json:"sources"`
}

type PageFetcher interface {
	FetchCards(ctx context.Context, url string) ([]Record, error)
}

// TabularWriter persists a category's records to a local spreadsheet.
// An empty record set returns "" without creating a file.
type TabularWriter interface {
	Write(name string, records []Record) (string, error)
}

// ObjectStore is the remote folder/file surface the pipeline uploads
// into. Authenticate may be called again mid-run to refresh an expired
// session.
type ObjectStore interface {
	Authenticate(ctx context.Context) error
	FindFolder(ctx context.Context, name string) (string, error)
	CreateFolder(ctx context.Context, name string) (string, error)
	Upload(ctx context.Context, localPath string, folderId string) (string, error)
}

// Options carries the pacing and sizing knobs of a run. Zero values fall
// back to the defaults the production schedules run with.
type Options struct {
	ChunkSize        int
	MaxConcurrent    int64
	PageDelay        time.Duration
	ChunkDelay       time.Duration
	LaunchStagger    time.Duration
	UploadRetries    int
	UploadRetryDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 2
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 2
	}
	if o.PageDelay == 0 {
		o.PageDelay = time.Second * 3
	}
	if o.ChunkDelay == 0 {
		o.ChunkDelay = time.Second * 10
	}
	if o.LaunchStagger == 0 {
		o.LaunchStagger = time.Second * 2
	}
	if o.UploadRetries <= 0 {
		o.UploadRetries = 3
	}
	if o.UploadRetryDelay == 0 {
		o.UploadRetryDelay = time.Second * 15
	}
	return o
}

// sleep waits for d unless the run is cancelled first.
func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
