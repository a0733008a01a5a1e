package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/megaskyshop/storefront/src/common/paths"
)

// tempPrefix marks in-flight uploads; List never reports them
const tempPrefix = ".upload-"

// LocalDriver stores files in a folder below the public asset root
type LocalDriver struct {
	root    string
	urlPath string
	baseURL string
	devMode bool
}

// NewLocal creates the local driver and makes sure its folder exists
func NewLocal(cfg LocalConfig, opts Options) (*LocalDriver, error) {
	rel := strings.TrimLeft(strings.TrimSpace(cfg.Path), "/")
	if rel == "" {
		rel = DefaultLocalPath
	}
	rel = path.Clean(filepath.ToSlash(rel))

	assetRoot := paths.Expand(opts.AssetRoot)
	if assetRoot == "" {
		assetRoot = DefaultOptions().AssetRoot
	}
	root := filepath.Join(assetRoot, filepath.FromSlash(rel))
	if rel == "." || !paths.Within(assetRoot, root) {
		return nil, configError(KindLocal, "init", "Local storage path %q leaves the asset root", cfg.Path)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, upstreamError(KindLocal, "init", fmt.Errorf("failed to create storage directory %s: %w", root, err))
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultOptions().BaseURL
	}

	return &LocalDriver{
		root:    root,
		urlPath: rel,
		baseURL: strings.TrimRight(baseURL, "/"),
		devMode: opts.DevMode,
	}, nil
}

// Root returns the directory files are written to
func (d *LocalDriver) Root() string {
	return d.root
}

// publicURL returns the URL a browser uses to fetch key
func (d *LocalDriver) publicURL(key string) string {
	return d.fullURL(d.urlPath + "/" + key)
}

// fullURL turns a path relative to the asset root into a URL
func (d *LocalDriver) fullURL(rel string) string {
	rel = "/" + strings.TrimLeft(rel, "/")
	if d.devMode {
		return rel
	}
	return d.baseURL + rel
}

// Upload writes the payload to a temporary file and renames it into place,
// so a failed upload never leaves a partial file behind
func (d *LocalDriver) Upload(ctx context.Context, obj UploadedObject) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", upstreamError(KindLocal, "upload", err)
	}
	if obj.Body == nil {
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("upload %q has no body", obj.Name))
	}

	if err := os.MkdirAll(d.root, 0755); err != nil {
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("failed to create directory %s: %w", d.root, err))
	}

	tmp, err := os.CreateTemp(d.root, tempPrefix+"*")
	if err != nil {
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("failed to create file in %s: %w", d.root, err))
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, obj.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("failed to write file: %w", err))
	}
	if obj.Size > 0 && written != obj.Size {
		os.Remove(tmpName)
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("size mismatch: expected %d bytes, wrote %d bytes", obj.Size, written))
	}

	key := newStorageKey(obj.Name)
	for {
		if _, err := os.Lstat(filepath.Join(d.root, key)); os.IsNotExist(err) {
			break
		}
		key = newStorageKey(obj.Name)
	}

	if err := os.Rename(tmpName, filepath.Join(d.root, key)); err != nil {
		os.Remove(tmpName)
		return "", upstreamError(KindLocal, "upload", fmt.Errorf("failed to store file %s: %w", key, err))
	}

	return d.publicURL(key), nil
}

// Delete removes the file named by the last segment of ref
func (d *LocalDriver) Delete(ctx context.Context, ref string) error {
	name := refName(ref)
	if name == "" || strings.HasPrefix(name, ".") {
		return notFoundError(KindLocal, "delete", ref)
	}

	full := filepath.Join(d.root, name)
	info, err := os.Lstat(full)
	if os.IsNotExist(err) {
		return notFoundError(KindLocal, "delete", ref)
	}
	if err != nil {
		return upstreamError(KindLocal, "delete", err)
	}
	if info.IsDir() {
		return notFoundError(KindLocal, "delete", ref)
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return notFoundError(KindLocal, "delete", ref)
		}
		return upstreamError(KindLocal, "delete", fmt.Errorf("failed to delete %s: %w", name, err))
	}
	return nil
}

// List returns the regular files in the storage folder. A missing folder is
// recreated and reported as empty; entries that cannot be inspected are
// skipped.
func (d *LocalDriver) List(ctx context.Context) ([]FileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, upstreamError(KindLocal, "list", err)
	}

	entries, err := os.ReadDir(d.root)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(d.root, 0755); err != nil {
			return nil, upstreamError(KindLocal, "list", err)
		}
		return []FileRecord{}, nil
	}
	if err != nil {
		return nil, upstreamError(KindLocal, "list", fmt.Errorf("failed to read %s: %w", d.root, err))
	}

	files := make([]FileRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			log.Debug("Skipping unreadable upload", "name", entry.Name(), "error", err)
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileRecord{
			Name:       entry.Name(),
			URL:        d.publicURL(entry.Name()),
			Size:       info.Size(),
			UploadedAt: info.ModTime().UTC(),
		})
	}
	return files, nil
}

// ResolveURL returns absolute URLs unchanged, or the path of the URL in
// development mode. Relative references are resolved against the asset root.
func (d *LocalDriver) ResolveURL(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", notFoundError(KindLocal, "resolve", ref)
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		if d.devMode {
			return d.fullURL(u.EscapedPath()), nil
		}
		return ref, nil
	}
	return d.fullURL(ref), nil
}

// Ping checks that the storage folder can be listed and written
func (d *LocalDriver) Ping(ctx context.Context) error {
	if _, err := d.List(ctx); err != nil {
		return err
	}
	probe, err := os.CreateTemp(d.root, tempPrefix+"probe-*")
	if err != nil {
		return upstreamError(KindLocal, "ping", fmt.Errorf("storage directory %s is not writable: %w", d.root, err))
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return nil
}

// Kind returns the provider kind
func (d *LocalDriver) Kind() ProviderKind {
	return KindLocal
}

// Location returns the storage directory
func (d *LocalDriver) Location() string {
	return d.root
}

// refName returns the last path segment of an absolute URL or relative path
func refName(ref string) string {
	ref = strings.TrimSpace(ref)
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
