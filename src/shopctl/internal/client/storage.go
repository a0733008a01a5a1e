package client

import (
	"context"
)

// LocalSettings configures local disk storage
type LocalSettings struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// S3Settings configures S3-compatible object storage
type S3Settings struct {
	Enabled      bool   `json:"enabled"`
	AccessKey    string `json:"accessKey"`
	SecretKey    string `json:"secretKey"`
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`
}

// BlobSettings configures the managed blob service
type BlobSettings struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
}

// StorageSettings is the persisted storage configuration
type StorageSettings struct {
	Local      LocalSettings `json:"local"`
	S3         S3Settings    `json:"s3"`
	VercelBlob BlobSettings  `json:"vercelBlob"`
}

// Provider returns the first enabled provider kind, or "" when none is
func (s *StorageSettings) Provider() string {
	switch {
	case s.Local.Enabled:
		return "local"
	case s.S3.Enabled:
		return "s3"
	case s.VercelBlob.Enabled:
		return "vercelBlob"
	}
	return ""
}

type storageSettingsBody struct {
	Settings *StorageSettings `json:"settings"`
	Message  string           `json:"message,omitempty"`
}

// StorageStatus reports the registry state
type StorageStatus struct {
	State         string `json:"state"`
	Provider      string `json:"provider,omitempty"`
	Location      string `json:"location,omitempty"`
	Configured    string `json:"configured,omitempty"`
	Fallback      bool   `json:"fallback"`
	LastError     string `json:"lastError,omitempty"`
	LastErrorCode string `json:"lastErrorCode,omitempty"`
	Available     bool   `json:"available"`
}

// GetStorageSettings returns the storage configuration. Credentials are
// masked unless reveal is set.
func (c *Client) GetStorageSettings(ctx context.Context, reveal bool) (*StorageSettings, error) {
	path := "/v1/settings/storage"
	if reveal {
		path += "?reveal=true"
	}
	var resp storageSettingsBody
	if err := c.Get(ctx, path, &resp); err != nil {
		return nil, err
	}
	if resp.Settings == nil {
		return &StorageSettings{}, nil
	}
	return resp.Settings, nil
}

// UpdateStorageSettings replaces the storage configuration and returns the
// saved, masked result
func (c *Client) UpdateStorageSettings(ctx context.Context, settings *StorageSettings) (*StorageSettings, error) {
	var resp storageSettingsBody
	if err := c.Put(ctx, "/v1/settings/storage", storageSettingsBody{Settings: settings}, &resp); err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

// GetStorageStatus returns the active provider and its health
func (c *Client) GetStorageStatus(ctx context.Context) (*StorageStatus, error) {
	var resp StorageStatus
	if err := c.Get(ctx, "/v1/storage/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
