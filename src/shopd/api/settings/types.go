package settings

import (
	"context"
	"time"

	"github.com/megaskyshop/storefront/src/shopd/storage"
)

// MaskedValue replaces credentials in responses
const MaskedValue = "********"

// ConfigStore reads and writes the storage configuration
type ConfigStore interface {
	ReadStorageConfig(ctx context.Context) (*storage.Configuration, error)
	WriteStorageConfig(ctx context.Context, cfg *storage.Configuration) error
}

// StatusProvider reports on the active storage driver
type StatusProvider interface {
	Resolve(ctx context.Context) (storage.Driver, error)
	Status() storage.Status
}

// Handler handles storage settings requests
type Handler struct {
	store    ConfigStore
	registry StatusProvider
	timeout  time.Duration
}

// Config contains configuration options for the Handler
type Config struct {
	Store    ConfigStore
	Registry StatusProvider
	Timeout  time.Duration
}

// StorageSettingsResponse wraps the storage configuration
type StorageSettingsResponse struct {
	Settings *storage.Configuration `json:"settings"`
}

// UpdateStorageSettingsRequest is the body of PUT /v1/settings/storage
type UpdateStorageSettingsRequest struct {
	Settings *storage.Configuration `json:"settings"`
}

// UpdateStorageSettingsResponse confirms an update
type UpdateStorageSettingsResponse struct {
	Settings *storage.Configuration `json:"settings"`
	Message  string                 `json:"message" example:"Storage settings updated"`
}

// StorageStatusResponse reports the registry state
type StorageStatusResponse struct {
	storage.Status
	Available bool `json:"available"`
}
