package errors

import "net/http"

// Common error codes used across domains
const (
	CodeNotFound       Code = "not_found"
	CodeInvalidRequest Code = "invalid_request"
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeInternal       Code = "internal_error"
	CodeUnavailable    Code = "unavailable"
	CodeTooLarge       Code = "too_large"
)

// ============================================================================
// Authentication Errors
// ============================================================================

var (
	// ErrNoToken is returned when no authentication token is provided
	ErrNoToken = New(DomainAuth, "no_token", http.StatusUnauthorized,
		"No authentication token provided")

	// ErrTokenInvalid is returned when a token is malformed or its signature does not verify
	ErrTokenInvalid = New(DomainAuth, "token_invalid", http.StatusUnauthorized,
		"Invalid token")

	// ErrTokenExpired is returned when a token has expired
	ErrTokenExpired = New(DomainAuth, "token_expired", http.StatusUnauthorized,
		"Token has expired")

	// ErrAdminRequired is returned when a valid token lacks the admin claim
	ErrAdminRequired = New(DomainAuth, CodeForbidden, http.StatusForbidden,
		"Admin access required")
)

// ============================================================================
// Storage Errors
// ============================================================================

var (
	// ErrStorageConfiguration is returned when the selected provider has missing
	// or rejected credentials. Not retried; surfaced to the admin.
	ErrStorageConfiguration = New(DomainStorage, "configuration", http.StatusBadRequest,
		"Storage provider configuration is invalid")

	// ErrStorageUpstream is returned on medium-level failures (network, disk)
	ErrStorageUpstream = New(DomainStorage, "upstream_io", http.StatusBadGateway,
		"Storage provider request failed")

	// ErrStorageNotFound is returned when a stored object does not exist
	ErrStorageNotFound = New(DomainStorage, CodeNotFound, http.StatusNotFound,
		"Object not found in storage")

	// ErrStorageUnavailable is returned when no storage provider, including the
	// local fallback, could be brought up
	ErrStorageUnavailable = New(DomainStorage, CodeUnavailable, http.StatusServiceUnavailable,
		"Storage system unavailable")

	// ErrUploadTooLarge is returned when an upload exceeds the configured size cap
	ErrUploadTooLarge = New(DomainStorage, CodeTooLarge, http.StatusRequestEntityTooLarge,
		"Uploaded file is too large")
)

// ============================================================================
// Settings Errors
// ============================================================================

var (
	// ErrSettingNotFound is returned when a settings key has no stored value
	ErrSettingNotFound = New(DomainSettings, CodeNotFound, http.StatusNotFound,
		"Setting not found")

	// ErrSettingsPersist is returned when settings cannot be written
	ErrSettingsPersist = New(DomainSettings, "persist_failed", http.StatusInternalServerError,
		"Failed to persist settings")
)

// ============================================================================
// Database Errors
// ============================================================================

var (
	// ErrDatabaseConnection is returned when database connection fails
	ErrDatabaseConnection = New(DomainDatabase, "connection_failed", http.StatusServiceUnavailable,
		"Database connection failed")

	// ErrDatabaseQuery is returned when a database query fails
	ErrDatabaseQuery = New(DomainDatabase, "query_failed", http.StatusInternalServerError,
		"Database query failed")
)

// ============================================================================
// Validation Errors
// ============================================================================

var (
	// ErrMissingRequiredField is returned when a required field is missing
	ErrMissingRequiredField = New(DomainValidation, "missing_field", http.StatusBadRequest,
		"Missing required field")

	// ErrInvalidJSON is returned when JSON parsing fails
	ErrInvalidJSON = New(DomainValidation, "invalid_json", http.StatusBadRequest,
		"Invalid JSON")
)

// ============================================================================
// Internal Errors
// ============================================================================

var (
	// ErrInternal is a generic internal server error
	ErrInternal = New(DomainInternal, CodeInternal, http.StatusInternalServerError,
		"Internal server error")

	// ErrRateLimited is returned when a caller exceeds its request budget
	ErrRateLimited = New(DomainInternal, "rate_limited", http.StatusTooManyRequests,
		"Too many requests")
)
