package api

import (
	"time"

	"github.com/megaskyshop/storefront/src/shopd/api/base"
	"github.com/megaskyshop/storefront/src/shopd/api/common"
	"github.com/megaskyshop/storefront/src/shopd/api/files"
	"github.com/megaskyshop/storefront/src/shopd/api/settings"
	"github.com/megaskyshop/storefront/src/shopd/auth"
)

// ErrorResponse is an alias to common.ErrorResponse
type ErrorResponse = common.ErrorResponse

// API holds all handler instances and dependencies
type API struct {
	// Subpackage handlers
	Base     *base.Handler
	Files    *files.Handler
	Settings *settings.Handler

	// Direct dependencies for middleware
	jwtService  *auth.JWTService
	rateLimiter *RateLimiter
}

// Config contains API configuration options
type Config struct {
	// Files is the storage facade behind /v1/files
	Files files.FileService

	// Store reads and writes the persisted storage configuration
	Store settings.ConfigStore

	// Registry reports the active driver for /v1/storage/status
	Registry settings.StatusProvider

	JWTService *auth.JWTService

	// MaxUploadSize caps multipart uploads; zero selects files.DefaultMaxUploadSize
	MaxUploadSize int64

	// Timeout bounds a single storage operation; zero disables it
	Timeout time.Duration

	// RateLimiter throttles admin routes per token subject; nil disables it
	RateLimiter *RateLimiter
}
