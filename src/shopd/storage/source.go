package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// SettingsKey is the settings row holding the storage configuration
const SettingsKey = "storage"

// SettingsStore is the key/value settings table
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// SecretCipher encrypts credentials at rest. Decrypt must accept plaintext.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(value string) (string, error)
}

// SettingsSource stores the storage configuration as JSON in the settings
// table, with credentials encrypted when a cipher is set
type SettingsSource struct {
	store   SettingsStore
	secrets SecretCipher

	mu        sync.Mutex
	listeners []func()
}

// NewSettingsSource creates a source over store. secrets may be nil.
func NewSettingsSource(store SettingsStore, secrets SecretCipher) *SettingsSource {
	return &SettingsSource{store: store, secrets: secrets}
}

// OnChange registers fn to run after every successful write
func (s *SettingsSource) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ReadStorageConfig returns the stored configuration. When none is stored
// the default is persisted and returned.
func (s *SettingsSource) ReadStorageConfig(ctx context.Context) (*Configuration, error) {
	raw, err := s.store.GetSetting(ctx, SettingsKey)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		cfg := DefaultConfiguration()
		if err := s.persist(ctx, cfg); err != nil {
			log.Warn("Failed to persist default storage configuration", "error", err)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{}
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, apperrors.ErrStorageConfiguration.
			WithMessage("Stored storage configuration is not valid JSON").
			WithCause(err)
	}

	if err := s.decryptSecrets(cfg); err != nil {
		return nil, apperrors.ErrStorageConfiguration.
			WithMessage("Stored storage credentials cannot be decrypted").
			WithCause(err)
	}
	return cfg, nil
}

// WriteStorageConfig validates and stores cfg, then notifies listeners.
// cfg itself is not modified.
func (s *SettingsSource) WriteStorageConfig(ctx context.Context, cfg *Configuration) error {
	if cfg == nil {
		return apperrors.ErrStorageConfiguration.WithMessage("Storage configuration is required")
	}
	next := cfg.Clone()
	next.Normalize()
	if err := next.Validate(); err != nil {
		return err
	}

	if err := s.persist(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
	return nil
}

func (s *SettingsSource) persist(ctx context.Context, cfg *Configuration) error {
	stored := cfg.Clone()
	if err := s.encryptSecrets(stored); err != nil {
		return apperrors.ErrSettingsPersist.WithCause(err)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return apperrors.ErrSettingsPersist.WithCause(err)
	}
	if err := s.store.SetSetting(ctx, SettingsKey, string(data)); err != nil {
		return apperrors.ErrSettingsPersist.WithCause(err)
	}
	return nil
}

func (s *SettingsSource) secretFields(cfg *Configuration) map[string]*string {
	return map[string]*string{
		"s3.accessKey":     &cfg.S3.AccessKey,
		"s3.secretKey":     &cfg.S3.SecretKey,
		"vercelBlob.token": &cfg.VercelBlob.Token,
	}
}

func (s *SettingsSource) encryptSecrets(cfg *Configuration) error {
	if s.secrets == nil {
		return nil
	}
	for name, field := range s.secretFields(cfg) {
		enc, err := s.secrets.Encrypt(*field)
		if err != nil {
			return fmt.Errorf("failed to encrypt %s: %w", name, err)
		}
		*field = enc
	}
	return nil
}

func (s *SettingsSource) decryptSecrets(cfg *Configuration) error {
	if s.secrets == nil {
		return nil
	}
	for name, field := range s.secretFields(cfg) {
		dec, err := s.secrets.Decrypt(*field)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", name, err)
		}
		*field = dec
	}
	return nil
}
