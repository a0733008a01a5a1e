// Package storage provides the storefront's pluggable media storage.
//
// Three interchangeable drivers (local filesystem, S3-compatible object
// storage, managed blob service) implement the same Driver contract. A
// Registry resolves the driver selected in the admin settings, validates it,
// caches it for the whole process and falls back to local storage when the
// selected provider cannot be brought up. Service is the facade the HTTP
// handlers call.
package storage

import (
	"context"
	"io"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/megaskyshop/storefront/src/common/logs"
)

var log = logs.NewDefault()

// SetLogger sets the logger for the storage package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

// ProviderKind identifies a storage medium
type ProviderKind string

const (
	// KindLocal stores files below the application's public asset root
	KindLocal ProviderKind = "local"
	// KindObjectStorage stores files in an S3-compatible bucket
	KindObjectStorage ProviderKind = "s3"
	// KindManagedBlob stores files in the managed blob service
	KindManagedBlob ProviderKind = "vercelBlob"
)

// Kinds returns all provider kinds in selection order
func Kinds() []ProviderKind {
	return []ProviderKind{KindLocal, KindObjectStorage, KindManagedBlob}
}

// Valid reports whether k is a known provider kind
func (k ProviderKind) Valid() bool {
	switch k {
	case KindLocal, KindObjectStorage, KindManagedBlob:
		return true
	}
	return false
}

// Driver is the capability set every storage medium implements
type Driver interface {
	// Upload stores obj under a fresh, collision-free key and returns its URL
	Upload(ctx context.Context, obj UploadedObject) (string, error)

	// Delete removes the object referenced by an absolute URL or a relative
	// path. Deleting a missing object is a not-found error.
	Delete(ctx context.Context, url string) error

	// List returns every stored file. An empty store yields an empty slice.
	List(ctx context.Context) ([]FileRecord, error)

	// ResolveURL converts a stored reference into a URL a client can fetch
	ResolveURL(ctx context.Context, path string) (string, error)

	// Ping is the lightweight health probe used to validate a freshly built
	// driver. It fails exactly when List would.
	Ping(ctx context.Context) error

	// Kind returns the provider kind
	Kind() ProviderKind

	// Location returns a human-readable description of the medium
	Location() string
}

// FileRecord is the uniform metadata returned for a stored file
type FileRecord struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadedObject is the input of an upload. Body is only read during the
// Upload call.
type UploadedObject struct {
	// Name is the original filename supplied by the client
	Name string
	// ContentType is the declared MIME type, may be empty
	ContentType string
	// Size is the payload length in bytes, zero or negative when unknown
	Size int64
	// Body streams the payload
	Body io.Reader
}

// Options holds process-level settings that are not part of the
// admin-editable Configuration.
type Options struct {
	// AssetRoot is the public asset directory local uploads live under
	AssetRoot string

	// BaseURL prefixes local file URLs outside development mode
	BaseURL string

	// DevMode forces relative URLs for local storage
	DevMode bool

	// BlobAPIURL is the managed blob service endpoint
	BlobAPIURL string

	// BlobToken overrides the stored managed blob token when set
	BlobToken string

	// SignedURLExpiry bounds presigned object-storage URLs
	SignedURLExpiry time.Duration

	// HTTPClient is used by remote drivers. Nil means a default client.
	HTTPClient *http.Client
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		AssetRoot:       "public",
		BaseURL:         "http://localhost:3000",
		BlobAPIURL:      defaultBlobAPIURL,
		SignedURLExpiry: time.Hour,
	}
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a client-supplied filename to a safe single path
// segment. Leading dots are stripped so stored files are never hidden.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "-" {
		return "file"
	}
	return name
}

// newStorageKey returns "<uuid>-<sanitized name>"
func newStorageKey(name string) string {
	return uuid.NewString() + "-" + sanitizeFilename(name)
}
