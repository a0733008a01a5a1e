package api

import (
	"github.com/megaskyshop/storefront/src/common/logs"
	"github.com/megaskyshop/storefront/src/common/version"
	"github.com/megaskyshop/storefront/src/shopd/api/base"
	"github.com/megaskyshop/storefront/src/shopd/api/files"
	"github.com/megaskyshop/storefront/src/shopd/api/settings"
)

// SetLogger sets the logger for the api subpackages
func SetLogger(l *logs.Logger) {
	files.SetLogger(l)
	settings.SetLogger(l)
}

// SetVersionInfo sets the version info for the api package and subpackages
func SetVersionInfo(v *version.Info) {
	base.SetVersionInfo(v)
}

// New creates a new API instance with all subpackage handlers
func New(cfg Config) *API {
	return &API{
		Base: base.NewHandler(),

		Files: files.NewHandler(files.Config{
			Service:       cfg.Files,
			MaxUploadSize: cfg.MaxUploadSize,
			Timeout:       cfg.Timeout,
		}),

		Settings: settings.NewHandler(settings.Config{
			Store:    cfg.Store,
			Registry: cfg.Registry,
			Timeout:  cfg.Timeout,
		}),

		jwtService:  cfg.JWTService,
		rateLimiter: cfg.RateLimiter,
	}
}
