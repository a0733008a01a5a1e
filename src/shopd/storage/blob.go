package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBlobAPIURL = "https://blob.vercel-storage.com"
	blobAPIVersion    = "7"
	blobListPageSize  = 1000
	blobUserAgent     = "shopd/1.0"
)

// ManagedBlobDriver stores files in the managed blob service through its
// HTTP API. The service returns absolute public URLs, so ResolveURL is the
// identity.
type ManagedBlobDriver struct {
	httpClient *http.Client
	apiURL     string
	token      string
}

type blobObject struct {
	URL        string    `json:"url"`
	Pathname   string    `json:"pathname"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type blobListResponse struct {
	Blobs   []blobObject `json:"blobs"`
	Cursor  string       `json:"cursor"`
	HasMore bool         `json:"hasMore"`
}

type blobErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewManagedBlob creates the managed blob driver. Options.BlobToken takes
// precedence over the stored token.
func NewManagedBlob(cfg BlobConfig, opts Options) (*ManagedBlobDriver, error) {
	token := strings.TrimSpace(opts.BlobToken)
	if token == "" {
		token = strings.TrimSpace(cfg.Token)
	}
	if token == "" {
		return nil, configError(KindManagedBlob, "init", "Blob storage token is required")
	}

	apiURL := strings.TrimRight(opts.BlobAPIURL, "/")
	if apiURL == "" {
		apiURL = defaultBlobAPIURL
	}

	return &ManagedBlobDriver{
		httpClient: opts.httpClient(),
		apiURL:     apiURL,
		token:      token,
	}, nil
}

func (d *ManagedBlobDriver) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	target := d.apiURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.token)
	req.Header.Set("X-Api-Version", blobAPIVersion)
	req.Header.Set("User-Agent", blobUserAgent)
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out. Non-2xx responses are
// mapped onto storage errors.
func (d *ManagedBlobDriver) do(req *http.Request, op, ref string, out interface{}) error {
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return upstreamError(KindManagedBlob, op, fmt.Errorf("blob API request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstreamError(KindManagedBlob, op, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return blobStatusError(op, ref, resp.StatusCode, body)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return upstreamError(KindManagedBlob, op, fmt.Errorf("failed to parse blob API response: %w", err))
	}
	return nil
}

func blobStatusError(op, ref string, status int, body []byte) error {
	message := http.StatusText(status)
	var apiErr blobErrorResponse
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
		message = apiErr.Error.Message
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return configError(KindManagedBlob, op, "Blob storage rejected the token: %s", message)
	case status == http.StatusNotFound && ref != "":
		return notFoundError(KindManagedBlob, op, ref)
	default:
		return upstreamError(KindManagedBlob, op, fmt.Errorf("blob API returned status %d: %s", status, message))
	}
}

// validateToken makes the cheapest authenticated call the API offers
func (d *ManagedBlobDriver) validateToken(ctx context.Context, op string) error {
	req, err := d.newRequest(ctx, http.MethodGet, "/", url.Values{"limit": {"1"}}, nil)
	if err != nil {
		return upstreamError(KindManagedBlob, op, err)
	}
	return d.do(req, op, "", nil)
}

// Upload sends the payload to the service under a fresh key
func (d *ManagedBlobDriver) Upload(ctx context.Context, obj UploadedObject) (string, error) {
	if obj.Body == nil {
		return "", upstreamError(KindManagedBlob, "upload", fmt.Errorf("upload %q has no body", obj.Name))
	}
	if err := d.validateToken(ctx, "upload"); err != nil {
		return "", err
	}

	key := newStorageKey(obj.Name)
	req, err := d.newRequest(ctx, http.MethodPut, "/"+key, nil, obj.Body)
	if err != nil {
		return "", upstreamError(KindManagedBlob, "upload", err)
	}
	if obj.Size > 0 {
		req.ContentLength = obj.Size
	}
	req.Header.Set("X-Add-Random-Suffix", "0")
	if obj.ContentType != "" {
		req.Header.Set("X-Content-Type", obj.ContentType)
	}

	var uploaded blobObject
	if err := d.do(req, "upload", "", &uploaded); err != nil {
		return "", err
	}
	if uploaded.URL == "" {
		return "", upstreamError(KindManagedBlob, "upload", fmt.Errorf("blob API returned no URL for %s", key))
	}
	return uploaded.URL, nil
}

// Delete removes a blob given its absolute URL, its pathname or a relative
// path ending in the key
func (d *ManagedBlobDriver) Delete(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return notFoundError(KindManagedBlob, "delete", ref)
	}
	if err := d.validateToken(ctx, "delete"); err != nil {
		return err
	}
	if !isAbsoluteURL(ref) {
		blobURL, err := d.lookupURL(ctx, ref)
		if err != nil {
			return err
		}
		ref = blobURL
	}

	head, err := d.newRequest(ctx, http.MethodGet, "/", url.Values{"url": {ref}}, nil)
	if err != nil {
		return upstreamError(KindManagedBlob, "delete", err)
	}
	if err := d.do(head, "delete", ref, nil); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string][]string{"urls": {ref}})
	if err != nil {
		return upstreamError(KindManagedBlob, "delete", err)
	}
	req, err := d.newRequest(ctx, http.MethodPost, "/delete", nil, bytes.NewReader(payload))
	if err != nil {
		return upstreamError(KindManagedBlob, "delete", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return d.do(req, "delete", ref, nil)
}

// lookupURL finds the URL of the blob whose pathname matches a relative
// reference. The service only deletes by URL.
func (d *ManagedBlobDriver) lookupURL(ctx context.Context, ref string) (string, error) {
	rel := strings.TrimLeft(ref, "/")
	if u, err := url.Parse(rel); err == nil && u.Path != "" {
		rel = u.Path
	}

	// Try the path as given, then the bare key
	prefixes := []string{rel}
	if key := path.Base(rel); key != rel {
		prefixes = append(prefixes, key)
	}
	for _, prefix := range prefixes {
		cursor := ""
		for {
			query := url.Values{"prefix": {prefix}, "limit": {strconv.Itoa(blobListPageSize)}}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			req, err := d.newRequest(ctx, http.MethodGet, "/", query, nil)
			if err != nil {
				return "", upstreamError(KindManagedBlob, "delete", err)
			}
			var page blobListResponse
			if err := d.do(req, "delete", ref, &page); err != nil {
				return "", err
			}
			for _, b := range page.Blobs {
				if b.Pathname == prefix {
					return b.URL, nil
				}
			}
			if !page.HasMore || page.Cursor == "" {
				break
			}
			cursor = page.Cursor
		}
	}
	return "", notFoundError(KindManagedBlob, "delete", ref)
}

// List walks every page of the store
func (d *ManagedBlobDriver) List(ctx context.Context) ([]FileRecord, error) {
	if err := d.validateToken(ctx, "list"); err != nil {
		return nil, err
	}

	files := []FileRecord{}
	cursor := ""
	for {
		query := url.Values{"limit": {strconv.Itoa(blobListPageSize)}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}
		req, err := d.newRequest(ctx, http.MethodGet, "/", query, nil)
		if err != nil {
			return nil, upstreamError(KindManagedBlob, "list", err)
		}

		var page blobListResponse
		if err := d.do(req, "list", "", &page); err != nil {
			return nil, err
		}

		for _, b := range page.Blobs {
			uploadedAt := b.UploadedAt.UTC()
			if b.UploadedAt.IsZero() {
				uploadedAt = time.Now().UTC()
			}
			files = append(files, FileRecord{
				Name:       path.Base(b.Pathname),
				URL:        b.URL,
				Size:       b.Size,
				UploadedAt: uploadedAt,
			})
		}

		if !page.HasMore || page.Cursor == "" {
			break
		}
		cursor = page.Cursor
	}
	return files, nil
}

// ResolveURL returns ref unchanged
func (d *ManagedBlobDriver) ResolveURL(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", notFoundError(KindManagedBlob, "resolve", ref)
	}
	return ref, nil
}

// Ping validates the token
func (d *ManagedBlobDriver) Ping(ctx context.Context) error {
	return d.validateToken(ctx, "ping")
}

// Kind returns the provider kind
func (d *ManagedBlobDriver) Kind() ProviderKind {
	return KindManagedBlob
}

// Location returns the API endpoint
func (d *ManagedBlobDriver) Location() string {
	return d.apiURL
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != "" && u.Host != ""
}
