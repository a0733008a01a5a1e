package storage

import (
	"strings"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// DefaultLocalPath is the folder below the asset root used when no local
// path is configured
const DefaultLocalPath = "uploads"

// LocalConfig configures the local filesystem driver
type LocalConfig struct {
	Enabled bool `json:"enabled"`
	// Path is relative to the public asset root
	Path string `json:"path"`
}

// S3Config configures the S3-compatible object storage driver
type S3Config struct {
	Enabled   bool   `json:"enabled"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	// Endpoint targets an S3-compatible service instead of AWS
	Endpoint string `json:"endpoint,omitempty"`
	// UsePathStyle addresses buckets as <endpoint>/<bucket>/<key>
	UsePathStyle bool `json:"usePathStyle,omitempty"`
}

// BlobConfig configures the managed blob driver
type BlobConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
}

// Configuration is the persisted, admin-editable storage configuration.
// A valid configuration has exactly one enabled provider.
type Configuration struct {
	Local      LocalConfig `json:"local"`
	S3         S3Config    `json:"s3"`
	VercelBlob BlobConfig  `json:"vercelBlob"`
}

// DefaultConfiguration returns local storage under "uploads"
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Local: LocalConfig{Enabled: true, Path: DefaultLocalPath},
	}
}

// Clone returns a deep copy
func (c *Configuration) Clone() *Configuration {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// EnabledProviders returns the enabled providers in selection order
func (c *Configuration) EnabledProviders() []ProviderKind {
	var kinds []ProviderKind
	if c.Local.Enabled {
		kinds = append(kinds, KindLocal)
	}
	if c.S3.Enabled {
		kinds = append(kinds, KindObjectStorage)
	}
	if c.VercelBlob.Enabled {
		kinds = append(kinds, KindManagedBlob)
	}
	return kinds
}

// Selected returns the provider that should serve requests. When several
// providers are enabled the first in selection order wins; false means none
// is enabled.
func (c *Configuration) Selected() (ProviderKind, bool) {
	kinds := c.EnabledProviders()
	if len(kinds) == 0 {
		return "", false
	}
	return kinds[0], true
}

// Normalize trims whitespace and strips leading slashes from the local path
func (c *Configuration) Normalize() {
	c.Local.Path = strings.TrimLeft(strings.TrimSpace(c.Local.Path), "/")
	c.S3.AccessKey = strings.TrimSpace(c.S3.AccessKey)
	c.S3.Bucket = strings.TrimSpace(c.S3.Bucket)
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	c.S3.Endpoint = strings.TrimRight(strings.TrimSpace(c.S3.Endpoint), "/")
	c.VercelBlob.Token = strings.TrimSpace(c.VercelBlob.Token)
}

// Validate checks that exactly one provider is enabled and that the enabled
// provider has the fields it needs
func (c *Configuration) Validate() error {
	kinds := c.EnabledProviders()
	switch len(kinds) {
	case 0:
		return apperrors.ErrStorageConfiguration.WithMessage("No storage provider is enabled")
	case 1:
	default:
		return apperrors.ErrStorageConfiguration.WithMessagef("Only one storage provider may be enabled, got %d", len(kinds))
	}

	switch kinds[0] {
	case KindLocal:
		return c.Local.validate()
	case KindObjectStorage:
		return c.S3.validate()
	case KindManagedBlob:
		return c.VercelBlob.validate()
	}
	return nil
}

func (l LocalConfig) validate() error {
	p := strings.Trim(strings.TrimSpace(l.Path), "/")
	if p == "" {
		return configError(KindLocal, "validate", "Local storage path is required")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return configError(KindLocal, "validate", "Local storage path %q leaves the asset root", l.Path)
		}
	}
	return nil
}

func (s S3Config) validate() error {
	var missing []string
	if s.AccessKey == "" {
		missing = append(missing, "accessKey")
	}
	if s.SecretKey == "" {
		missing = append(missing, "secretKey")
	}
	if s.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if s.Region == "" {
		missing = append(missing, "region")
	}
	if len(missing) > 0 {
		return configError(KindObjectStorage, "validate", "S3 configuration is incomplete, missing %s", strings.Join(missing, ", "))
	}
	return nil
}

func (b BlobConfig) validate() error {
	if b.Token == "" {
		return configError(KindManagedBlob, "validate", "Blob storage token is required")
	}
	return nil
}

// Masked returns a copy with credentials replaced by mask. Empty values stay
// empty so the dashboard can tell "unset" from "hidden".
func (c *Configuration) Masked(mask string) *Configuration {
	cp := c.Clone()
	maskValue := func(v string) string {
		if v == "" {
			return ""
		}
		return mask
	}
	cp.S3.AccessKey = maskValue(cp.S3.AccessKey)
	cp.S3.SecretKey = maskValue(cp.S3.SecretKey)
	cp.VercelBlob.Token = maskValue(cp.VercelBlob.Token)
	return cp
}

// Unmask replaces credentials equal to mask with the values from prev, so a
// dashboard round trip of a masked configuration keeps the stored secrets
func (c *Configuration) Unmask(mask string, prev *Configuration) {
	if prev == nil {
		return
	}
	if c.S3.AccessKey == mask {
		c.S3.AccessKey = prev.S3.AccessKey
	}
	if c.S3.SecretKey == mask {
		c.S3.SecretKey = prev.S3.SecretKey
	}
	if c.VercelBlob.Token == mask {
		c.VercelBlob.Token = prev.VercelBlob.Token
	}
}
