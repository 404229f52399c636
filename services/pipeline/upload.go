package pipeline

import (
	"context"
	"log/slog"
	"os"
	"time"

	"souqscrape/lib/retry"
	"souqscrape/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Uploader pushes a batch of local spreadsheet files into the store
// folder named after the target date.
type Uploader struct {
	store      ObjectStore
	retries    int
	retryDelay time.Duration
}

func NewUploader(store ObjectStore, retries int, retryDelay time.Duration) Uploader {
	return Uploader{
		store:      store,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// UploadAll resolves the date folder once, then uploads each file with
// bounded retries, re-authenticating the store session between attempts
// since a long scrape can outlive the credentials. A file that exhausts
// its retries is abandoned (left on disk, logged) and the batch moves
// on; only failing to resolve the folder aborts the whole batch.
//
// Returns the paths that were confirmed uploaded; the caller deletes
// exactly those.
func (u Uploader) UploadAll(ctx context.Context, paths []string, target time.Time) ([]string, error) {
	ctx, span := tracer.Start(ctx, "uploader:UploadAll")
	defer span.End()
	span.SetAttributes(attribute.Int("files", len(paths)))

	folderName := timezone.DateString(target)
	folderId, err := u.resolveFolder(ctx, folderName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve destination folder")
		return nil, err
	}

	var uploaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			slog.WarnContext(ctx, "skipping missing local file", "path", path, "err", err)
			continue
		}

		policy := retry.Policy{
			Attempts: u.retries,
			Delay:    u.retryDelay,
			OnRetry: func(ctx context.Context, attempt int, err error) {
				slog.WarnContext(
					ctx, "upload attempt failed, re-authenticating",
					"path", path,
					"attempt", attempt,
					"err", err,
				)
				authErr := u.store.Authenticate(ctx)
				if authErr != nil {
					slog.WarnContext(ctx, "re-authentication failed", "err", authErr)
				}
			},
		}

		err := policy.Do(ctx, func(ctx context.Context) error {
			_, err := u.store.Upload(ctx, path, folderId)
			return err
		})
		if err != nil {
			slog.ErrorContext(
				ctx, "giving up on upload",
				"path", path,
				"attempts", u.retries,
				"err", err,
			)
			uploadsAbandoned.Add(ctx, 1)
			continue
		}

		slog.InfoContext(ctx, "uploaded file", "path", path, "folder", folderName)
		uploadsConfirmed.Add(ctx, 1)
		uploaded = append(uploaded, path)
	}

	return uploaded, nil
}

// resolveFolder finds or lazily creates the date folder. Happens once
// per batch, not once per file.
func (u Uploader) resolveFolder(ctx context.Context, name string) (string, error) {
	folderId, err := u.store.FindFolder(ctx, name)
	if err != nil {
		return "", err
	}
	if folderId != "" {
		return folderId, nil
	}

	folderId, err = u.store.CreateFolder(ctx, name)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "created destination folder", "name", name)
	return folderId, nil
}
