package storage

import (
	"context"
)

// Service is the storage facade. Every operation resolves the active driver
// and delegates to it; failures keep their storage error code and are tagged
// with the provider that produced them.
type Service struct {
	registry *Registry
}

// NewService creates a facade over registry
func NewService(registry *Registry) *Service {
	return &Service{registry: registry}
}

// Registry returns the underlying registry
func (s *Service) Registry() *Registry {
	return s.registry
}

// UploadFile stores obj and returns its URL
func (s *Service) UploadFile(ctx context.Context, obj UploadedObject) (string, error) {
	d, err := s.registry.Resolve(ctx)
	if err != nil {
		return "", err
	}

	url, err := d.Upload(ctx, obj)
	if err != nil {
		return "", tagProvider(d.Kind(), "upload", err)
	}
	log.Info("File uploaded", "provider", d.Kind(), "name", obj.Name, "url", url)
	return url, nil
}

// DeleteFile removes the file referenced by url
func (s *Service) DeleteFile(ctx context.Context, url string) error {
	d, err := s.registry.Resolve(ctx)
	if err != nil {
		return err
	}

	if err := d.Delete(ctx, url); err != nil {
		return tagProvider(d.Kind(), "delete", err)
	}
	log.Info("File deleted", "provider", d.Kind(), "url", url)
	return nil
}

// ListFiles returns every stored file, never nil on success
func (s *Service) ListFiles(ctx context.Context) ([]FileRecord, error) {
	d, err := s.registry.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	files, err := d.List(ctx)
	if err != nil {
		return nil, tagProvider(d.Kind(), "list", err)
	}
	if files == nil {
		files = []FileRecord{}
	}
	return files, nil
}

// GetFileURL returns a fetchable URL for path
func (s *Service) GetFileURL(ctx context.Context, path string) (string, error) {
	d, err := s.registry.Resolve(ctx)
	if err != nil {
		return "", err
	}

	url, err := d.ResolveURL(ctx, path)
	if err != nil {
		return "", tagProvider(d.Kind(), "resolve", err)
	}
	return url, nil
}
