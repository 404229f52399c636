package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"souqscrape/lib/timezone"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	authCalls   int
	authErr     error
	folders     map[string]string
	findErr     error
	createCalls int
	uploadCalls map[string]int
	uploadFail  map[string]bool
}

func newStubStore() *stubStore {
	return &stubStore{
		folders:     map[string]string{},
		uploadCalls: map[string]int{},
		uploadFail:  map[string]bool{},
	}
}

func (s *stubStore) Authenticate(ctx context.Context) error {
	s.authCalls++
	return s.authErr
}

func (s *stubStore) FindFolder(ctx context.Context, name string) (string, error) {
	if s.findErr != nil {
		return "", s.findErr
	}
	return s.folders[name], nil
}

func (s *stubStore) CreateFolder(ctx context.Context, name string) (string, error) {
	s.createCalls++
	id := fmt.Sprintf("folder-%s", name)
	s.folders[name] = id
	return id, nil
}

func (s *stubStore) Upload(ctx context.Context, localPath string, folderId string) (string, error) {
	s.uploadCalls[localPath]++
	if s.uploadFail[localPath] {
		return "", fmt.Errorf("upload refused")
	}
	return "remote-" + filepath.Base(localPath), nil
}

func tempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("xlsx"), 0644))
	return path
}

func TestUploadRetryExhaustion(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)
	store := newStubStore()

	broken := tempFile(t, "broken.xlsx")
	fine := tempFile(t, "fine.xlsx")
	store.uploadFail[broken] = true

	uploader := NewUploader(store, 3, time.Millisecond)
	uploaded, err := uploader.UploadAll(context.Background(), []string{broken, fine}, target)
	require.NoError(t, err)

	// the broken file gets exactly 3 attempts with a re-auth between
	// each pair, then is abandoned without sinking the batch
	require.Equal(t, 3, store.uploadCalls[broken])
	require.Equal(t, 2, store.authCalls)
	require.Equal(t, []string{fine}, uploaded)

	_, statErr := os.Stat(broken)
	require.NoError(t, statErr, "abandoned file must stay on disk")
}

func TestUploadResolvesFolderOnce(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)
	store := newStubStore()

	files := []string{
		tempFile(t, "a.xlsx"),
		tempFile(t, "b.xlsx"),
		tempFile(t, "c.xlsx"),
	}

	uploader := NewUploader(store, 3, time.Millisecond)
	uploaded, err := uploader.UploadAll(context.Background(), files, target)
	require.NoError(t, err)
	require.Equal(t, files, uploaded)
	require.Equal(t, 1, store.createCalls)

	// second batch finds the folder instead of creating another
	more := []string{tempFile(t, "d.xlsx")}
	_, err = uploader.UploadAll(context.Background(), more, target)
	require.NoError(t, err)
	require.Equal(t, 1, store.createCalls)
}

func TestUploadFolderResolutionFailureAbortsBatch(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)
	store := newStubStore()
	store.findErr = fmt.Errorf("store unreachable")

	file := tempFile(t, "a.xlsx")
	uploader := NewUploader(store, 3, time.Millisecond)

	uploaded, err := uploader.UploadAll(context.Background(), []string{file}, target)
	require.Error(t, err)
	require.Empty(t, uploaded)
	// folder resolution is not retried, unlike per-file uploads
	require.Empty(t, store.uploadCalls)
}

func TestUploadSkipsMissingLocalFile(t *testing.T) {
	target := time.Date(2024, time.January, 15, 0, 0, 0, 0, timezone.Location)
	store := newStubStore()

	present := tempFile(t, "present.xlsx")
	missing := filepath.Join(t.TempDir(), "missing.xlsx")

	uploader := NewUploader(store, 3, time.Millisecond)
	uploaded, err := uploader.UploadAll(context.Background(), []string{missing, present}, target)
	require.NoError(t, err)
	require.Equal(t, []string{present}, uploaded)
	require.Zero(t, store.uploadCalls[missing])
}
