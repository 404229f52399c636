package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"souqscrape/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

// Orchestrator drives one full scrape-and-upload run: category chunking,
// bounded-concurrency scraping, spreadsheet staging, batch upload, and
// local cleanup.
type Orchestrator struct {
	categories []CategorySpec
	scraper    Scraper
	writer     TabularWriter
	store      ObjectStore
	uploader   Uploader
	opts       Options

	// run-wide admission control; chunks run one after another but task
	// concurrency is throttled at this level too
	sem *semaphore.Weighted
}

func NewOrchestrator(
	categories []CategorySpec,
	fetcher PageFetcher,
	writer TabularWriter,
	store ObjectStore,
	opts Options,
) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		categories: categories,
		scraper:    NewScraper(fetcher, opts.PageDelay),
		writer:     writer,
		store:      store,
		uploader:   NewUploader(store, opts.UploadRetries, opts.UploadRetryDelay),
		opts:       opts,
		sem:        semaphore.NewWeighted(opts.MaxConcurrent),
	}
}

// Run executes the whole pipeline against yesterday's date, frozen once
// so a run that crosses midnight doesn't drift. Only setup failures
// (store authentication) abort the run; everything downstream is
// contained at page/category/file granularity and surfaces through logs
// and the returned summary.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "orchestrator:Run")
	defer span.End()

	target := timezone.Yesterday()
	summary := Summary{Target: target}
	span.SetAttributes(attribute.String("target", timezone.DateString(target)))

	err := o.store.Authenticate(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to authenticate store")
		return summary, fmt.Errorf("authenticate store: %w", err)
	}

	chunks := chunkCategories(o.categories, o.opts.ChunkSize)
	slog.InfoContext(
		ctx, "starting run",
		"target", timezone.DateString(target),
		"categories", len(o.categories),
		"chunks", len(chunks),
	)

	for i, chunk := range chunks {
		slog.InfoContext(ctx, "processing chunk", "chunk", i+1, "total", len(chunks))
		outcomes := o.processChunk(ctx, chunk, target)
		summary.Outcomes = append(summary.Outcomes, outcomes...)

		if i < len(chunks)-1 {
			sleep(ctx, o.opts.ChunkDelay)
		}
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "run cancelled", "err", ctx.Err())
			break
		}
	}

	return summary, nil
}

func (o *Orchestrator) processChunk(ctx context.Context, chunk []CategorySpec, target time.Time) []Outcome {
	ctx, span := tracer.Start(ctx, "orchestrator:processChunk")
	defer span.End()

	// scrape every category in the chunk concurrently, bounded by the
	// run-wide semaphore, staggering launches to avoid a thundering herd
	results := make([][]Record, len(chunk))
	var wg sync.WaitGroup
	for i, spec := range chunk {
		wg.Add(1)
		go func(i int, spec CategorySpec) {
			defer wg.Done()

			err := o.sem.Acquire(ctx, 1)
			if err != nil {
				slog.WarnContext(ctx, "run cancelled before scrape", "category", spec.Name, "err", err)
				return
			}
			defer o.sem.Release(1)

			results[i] = o.scraper.Scrape(ctx, spec, target)
		}(i, spec)

		if i < len(chunk)-1 {
			sleep(ctx, o.opts.LaunchStagger)
		}
	}
	wg.Wait()

	// stage a spreadsheet per category with matches; empty categories
	// never reach the uploader
	outcomes := make([]Outcome, len(chunk))
	var pending []string
	for i, spec := range chunk {
		outcomes[i] = Outcome{Category: spec.Name, Matched: len(results[i])}

		if len(results[i]) == 0 {
			slog.InfoContext(ctx, "no records for category, skipping file", "category", spec.Name)
			continue
		}

		path, err := o.writer.Write(spec.Name, results[i])
		if err != nil {
			slog.ErrorContext(ctx, "failed to write spreadsheet", "category", spec.Name, "err", err)
			continue
		}
		if path == "" {
			continue
		}

		outcomes[i].LocalPath = path
		pending = append(pending, path)
	}

	if len(pending) == 0 {
		return outcomes
	}

	uploaded, err := o.uploader.UploadAll(ctx, pending, target)
	if err != nil {
		// folder resolution failed; this chunk's files stay on disk and
		// the run carries on with the next chunk
		slog.ErrorContext(ctx, "upload batch failed", "err", err)
		return outcomes
	}

	confirmed := map[string]bool{}
	for _, path := range uploaded {
		confirmed[path] = true
	}
	for i := range outcomes {
		if outcomes[i].LocalPath == "" || !confirmed[outcomes[i].LocalPath] {
			continue
		}
		outcomes[i].Uploaded = true

		err := os.Remove(outcomes[i].LocalPath)
		if err != nil {
			slog.WarnContext(ctx, "failed to clean up local file", "path", outcomes[i].LocalPath, "err", err)
			continue
		}
		slog.InfoContext(ctx, "cleaned up local file", "path", outcomes[i].LocalPath)
	}

	return outcomes
}

// chunkCategories splits the configured categories into batches of at
// most size, preserving order. Every category lands in exactly one
// chunk.
func chunkCategories(categories []CategorySpec, size int) [][]CategorySpec {
	var chunks [][]CategorySpec
	for start := 0; start < len(categories); start += size {
		end := start + size
		if end > len(categories) {
			end = len(categories)
		}
		chunks = append(chunks, categories[start:end])
	}
	return chunks
}
