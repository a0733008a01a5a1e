// Package common holds helpers shared by the shopd API handlers.
package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/megaskyshop/storefront/src/common/errors"
	"github.com/megaskyshop/storefront/src/shopd/auth"
)

// ClaimsKey is the gin context key the auth middleware stores claims under
const ClaimsKey = "claims"

// ErrorResponse is the JSON body of every error response
type ErrorResponse = apperrors.Response

// GetClaimsFromContext retrieves the token claims stored by auth middleware
func GetClaimsFromContext(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(ClaimsKey); exists {
		if tokenClaims, ok := claims.(*auth.Claims); ok {
			return tokenClaims
		}
	}
	return nil
}

// GetTokenFromRequest returns the bearer token from X-Subject-Token or the
// Authorization header
func GetTokenFromRequest(c *gin.Context) string {
	if token := c.GetHeader("X-Subject-Token"); token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// RespondError writes err with its mapped HTTP status
func RespondError(c *gin.Context, err error) {
	c.JSON(apperrors.GetHTTPStatus(err), apperrors.NewResponse(err))
}

// AbortError aborts the request with err and its mapped HTTP status
func AbortError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperrors.GetHTTPStatus(err), apperrors.NewResponse(err))
}

// BadRequest sends a 400 validation error
func BadRequest(c *gin.Context, message string) {
	RespondError(c, apperrors.ErrMissingRequiredField.WithMessage(message))
}

// InvalidJSON sends a 400 for a body that could not be decoded
func InvalidJSON(c *gin.Context, err error) {
	RespondError(c, apperrors.ErrInvalidJSON.WithCause(err))
}
