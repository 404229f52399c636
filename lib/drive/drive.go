package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"souqscrape/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

var tracer = otel.Tracer("drive")

const scopeDrive = "https://www.googleapis.com/auth/drive"
const folderMimeType = "application/vnd.google-apps.folder"

// Credentials is the service-account key JSON delivered through the
// environment.
type Credentials struct {
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// StoreError wraps a failed call against the storage API.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("drive %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Client talks to the Google Drive v3 REST API. The access token is
// mutable shared session state; Authenticate replaces it in place so a
// re-auth during an upload retry is visible to subsequent attempts.
// Uploads run sequentially, so no locking around it.
type Client struct {
	ParentFolder string

	creds Credentials
	http  *resty.Client
	token string
}

type ClientOptions struct {
	Credentials  Credentials
	ParentFolder string
	// BaseUrl overrides the API endpoint, tests only
	BaseUrl string
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = "https://www.googleapis.com"
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Minute * 2)
	telemetry.InstrumentResty(client, "drive/http")

	return &Client{
		ParentFolder: opts.ParentFolder,
		creds:        opts.Credentials,
		http:         client,
	}
}

// Authenticate mints a fresh access token for the service account and
// installs it on the session.
func (c *Client) Authenticate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	tokenUrl := c.creds.TokenURI
	if tokenUrl == "" {
		tokenUrl = google.JWTTokenURL
	}
	cfg := &jwt.Config{
		Email:        c.creds.ClientEmail,
		PrivateKey:   []byte(c.creds.PrivateKey),
		PrivateKeyID: c.creds.PrivateKeyID,
		Scopes:       []string{scopeDrive},
		TokenURL:     tokenUrl,
	}

	token, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to mint access token")
		return &StoreError{Op: "authenticate", Err: err}
	}

	c.token = token.AccessToken
	return nil
}

type fileResource struct {
	Id       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	MimeType string   `json:"mimeType,omitempty"`
	Parents  []string `json:"parents,omitempty"`
}

type fileList struct {
	Files []fileResource `json:"files"`
}

// FindFolder looks a folder up by name under the configured parent.
// Returns "" when no such folder exists, which is not an error.
func (c *Client) FindFolder(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FindFolder")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	query := fmt.Sprintf(
		"name='%s' and mimeType='%s' and trashed=false",
		strings.ReplaceAll(name, "'", `\'`), folderMimeType,
	)
	if c.ParentFolder != "" {
		query += fmt.Sprintf(" and '%s' in parents", c.ParentFolder)
	}

	var list fileList
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetQueryParams(map[string]string{
			"q":      query,
			"spaces": "drive",
			"fields": "files(id, name)",
		}).
		SetResult(&list).
		ForceContentType("application/json").
		Get("/drive/v3/files")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list folders")
		return "", &StoreError{Op: "find folder", Err: err}
	}
	if res.IsError() {
		err := fmt.Errorf("status %d: %s", res.StatusCode(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return "", &StoreError{Op: "find folder", Err: err}
	}

	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// CreateFolder creates a folder under the configured parent and returns
// its id.
func (c *Client) CreateFolder(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:CreateFolder")
	defer span.End()
	span.SetAttributes(attribute.String("name", name))

	body := fileResource{
		Name:     name,
		MimeType: folderMimeType,
	}
	if c.ParentFolder != "" {
		body.Parents = []string{c.ParentFolder}
	}

	var created fileResource
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(body).
		SetQueryParam("fields", "id, name").
		SetResult(&created).
		ForceContentType("application/json").
		Post("/drive/v3/files")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create folder")
		return "", &StoreError{Op: "create folder", Err: err}
	}
	if res.IsError() {
		err := fmt.Errorf("status %d: %s", res.StatusCode(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return "", &StoreError{Op: "create folder", Err: err}
	}

	return created.Id, nil
}

// Upload pushes a local file into the given folder using a multipart
// upload and returns the remote file id.
func (c *Client) Upload(ctx context.Context, localPath string, folderId string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:Upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("path", localPath),
		attribute.String("folder", folderId),
	)

	file, err := os.Open(localPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open local file")
		return "", &StoreError{Op: "upload", Err: err}
	}
	defer file.Close()

	metadata := fmt.Sprintf(
		`{"name":%q,"parents":[%q]}`,
		filepath.Base(localPath), folderId,
	)

	var created fileResource
	res, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetMultipartField("metadata", "", "application/json; charset=UTF-8", strings.NewReader(metadata)).
		SetMultipartField("file", filepath.Base(localPath), "application/octet-stream", file).
		SetQueryParams(map[string]string{
			"uploadType": "multipart",
			"fields":     "id",
		}).
		SetResult(&created).
		ForceContentType("application/json").
		Post("/upload/drive/v3/files")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload")
		return "", &StoreError{Op: "upload", Err: err}
	}
	if res.IsError() {
		err := fmt.Errorf("status %d: %s", res.StatusCode(), res.String())
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad status")
		return "", &StoreError{Op: "upload", Err: err}
	}

	return created.Id, nil
}
