package storage

import (
	"context"
	"errors"
	"sync"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

// State is the lifecycle state of the Registry
type State string

const (
	// StateEmpty means no driver is cached
	StateEmpty State = "empty"
	// StateValidating means a driver is being built and pinged
	StateValidating State = "validating"
	// StateReady means a validated driver is cached
	StateReady State = "ready"
)

// ConfigSource supplies the persisted storage configuration
type ConfigSource interface {
	ReadStorageConfig(ctx context.Context) (*Configuration, error)
}

// Builder constructs a driver of one kind from the configuration
type Builder func(ctx context.Context, cfg *Configuration, opts Options) (Driver, error)

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithBuilder replaces the builder used for kind
func WithBuilder(kind ProviderKind, b Builder) RegistryOption {
	return func(r *Registry) {
		r.builders[kind] = b
	}
}

// Status is a snapshot of the Registry for the admin dashboard
type Status struct {
	State         State        `json:"state"`
	Provider      ProviderKind `json:"provider,omitempty"`
	Location      string       `json:"location,omitempty"`
	Configured    ProviderKind `json:"configured,omitempty"`
	Fallback      bool         `json:"fallback"`
	LastError     string       `json:"lastError,omitempty"`
	LastErrorCode string       `json:"lastErrorCode,omitempty"`
}

// Registry owns the single active driver. The first Resolve builds and
// validates the configured driver and caches it; later calls return the
// cached driver without locking out each other. Invalidate drops the cache
// so the next Resolve picks up a configuration change.
type Registry struct {
	source   ConfigSource
	opts     Options
	builders map[ProviderKind]Builder

	// buildMu serializes cold-path construction
	buildMu sync.Mutex

	mu         sync.RWMutex
	driver     Driver
	state      State
	generation uint64
	configured ProviderKind
	fallback   bool
	lastErr    error
}

// NewRegistry creates an empty registry reading its configuration from source
func NewRegistry(source ConfigSource, opts Options, options ...RegistryOption) *Registry {
	r := &Registry{
		source: source,
		opts:   opts,
		state:  StateEmpty,
		builders: map[ProviderKind]Builder{
			KindLocal: func(ctx context.Context, cfg *Configuration, opts Options) (Driver, error) {
				d, err := NewLocal(cfg.Local, opts)
				if err != nil {
					return nil, err
				}
				return d, nil
			},
			KindObjectStorage: func(ctx context.Context, cfg *Configuration, opts Options) (Driver, error) {
				d, err := NewObjectStorage(cfg.S3, opts)
				if err != nil {
					return nil, err
				}
				return d, nil
			},
			KindManagedBlob: func(ctx context.Context, cfg *Configuration, opts Options) (Driver, error) {
				d, err := NewManagedBlob(cfg.VercelBlob, opts)
				if err != nil {
					return nil, err
				}
				return d, nil
			},
		},
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Resolve returns the active driver, building it on first use. When the
// configured provider cannot be brought up, local storage is used instead
// and the original failure is kept in LastError. If local storage itself
// fails, the error is ErrStorageUnavailable.
func (r *Registry) Resolve(ctx context.Context) (Driver, error) {
	r.mu.RLock()
	d := r.driver
	r.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	r.mu.Lock()
	if r.driver != nil {
		d := r.driver
		r.mu.Unlock()
		return d, nil
	}
	gen := r.generation
	r.state = StateValidating
	r.mu.Unlock()

	res, err := r.build(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	// An Invalidate during the build means the driver may reflect an old
	// configuration. The caller still gets it, the cache does not.
	if gen != r.generation {
		if err != nil {
			return nil, err
		}
		return res.driver, nil
	}

	if err != nil {
		r.state = StateEmpty
		if !isContextError(err) {
			r.lastErr = err
		}
		return nil, err
	}

	r.driver = res.driver
	r.state = StateReady
	r.configured = res.configured
	r.fallback = res.fallback
	r.lastErr = res.cause
	return res.driver, nil
}

type buildResult struct {
	driver     Driver
	configured ProviderKind
	fallback   bool
	cause      error
}

func (r *Registry) build(ctx context.Context) (*buildResult, error) {
	cfg, err := r.source.ReadStorageConfig(ctx)
	if err != nil {
		if isContextError(err) {
			return nil, apperrors.ErrStorageUpstream.WithCause(err)
		}
		readErr := apperrors.ErrStorageUpstream.WithMessage("Failed to read storage configuration").WithCause(err)
		log.Error("Failed to read storage configuration, falling back to local storage", "error", err)
		return r.fallbackTo(ctx, DefaultConfiguration(), "", readErr)
	}

	kind, ok := cfg.Selected()
	if !ok {
		log.Warn("No storage provider enabled, using local storage")
		kind = KindLocal
	} else if enabled := cfg.EnabledProviders(); len(enabled) > 1 {
		log.Warn("Several storage providers enabled, using the first", "enabled", enabled, "provider", kind)
	}

	d, err := r.construct(ctx, kind, cfg)
	if err == nil {
		log.Info("Storage provider ready", "provider", kind, "location", d.Location())
		return &buildResult{driver: d, configured: kind}, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	if failed, _ := ProviderOf(err); failed == KindLocal {
		log.Error("Local storage unavailable", "error", err)
		return nil, apperrors.ErrStorageUnavailable.WithMessage("Local storage is unavailable").WithCause(err)
	}

	log.Error("Storage provider failed, falling back to local storage", "provider", kind, "error", err)
	return r.fallbackTo(ctx, cfg, kind, err)
}

// fallbackTo brings up local storage after the configured provider failed
func (r *Registry) fallbackTo(ctx context.Context, cfg *Configuration, configured ProviderKind, cause error) (*buildResult, error) {
	local := &Configuration{Local: LocalConfig{Enabled: true, Path: cfg.Local.Path}}
	if local.Local.Path == "" {
		local.Local.Path = DefaultLocalPath
	}

	d, err := r.construct(ctx, KindLocal, local)
	if err != nil {
		log.Error("Local storage fallback failed", "error", err)
		return nil, apperrors.ErrStorageUnavailable.
			WithMessagef("No storage provider available: %v", cause).
			WithCause(err)
	}

	log.Warn("Using local storage fallback", "location", d.Location())
	return &buildResult{driver: d, configured: configured, fallback: true, cause: cause}, nil
}

func (r *Registry) construct(ctx context.Context, kind ProviderKind, cfg *Configuration) (Driver, error) {
	build, ok := r.builders[kind]
	if !ok {
		return nil, configError(kind, "init", "Unknown storage provider %q", kind)
	}

	d, err := build(ctx, cfg, r.opts)
	if err != nil {
		return nil, tagProvider(kind, "init", err)
	}
	if err := d.Ping(ctx); err != nil {
		return nil, tagProvider(kind, "validate", err)
	}
	return d, nil
}

// Invalidate drops the cached driver and the last provider error. The next
// Resolve rebuilds from the current configuration.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	r.driver = nil
	r.lastErr = nil
	r.configured = ""
	r.fallback = false
	r.state = StateEmpty
	log.Debug("Storage driver invalidated")
}

// State returns the lifecycle state
func (r *Registry) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// LastError returns the failure recorded by the most recent Resolve that
// built a driver: the configured provider's error after a fallback, or the
// error that left the registry empty. It is nil after a clean build.
func (r *Registry) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

// Status returns a snapshot of the registry
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st := Status{
		State:      r.state,
		Configured: r.configured,
		Fallback:   r.fallback,
	}
	if r.driver != nil {
		st.Provider = r.driver.Kind()
		st.Location = r.driver.Location()
	}
	if r.lastErr != nil {
		st.LastError = r.lastErr.Error()
		var appErr *apperrors.Error
		if errors.As(r.lastErr, &appErr) {
			st.LastErrorCode = appErr.Qualified()
		}
	}
	return st
}
