package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	apperrors "github.com/megaskyshop/storefront/src/common/errors"
	"github.com/megaskyshop/storefront/src/shopd/api/common"
)

// adminRequired rejects requests without a valid admin token and stores the
// claims in the context for handlers
func (a *API) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.GetTokenFromRequest(c)
		if token == "" {
			common.AbortError(c, apperrors.ErrNoToken)
			return
		}

		claims, err := a.jwtService.ValidateToken(token)
		if err != nil {
			common.AbortError(c, err)
			return
		}

		if !claims.Admin {
			common.AbortError(c, apperrors.ErrAdminRequired)
			return
		}

		c.Set(common.ClaimsKey, claims)
		c.Next()
	}
}

// rateLimit throttles requests per token subject, falling back to client IP
func (a *API) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.rateLimiter == nil {
			c.Next()
			return
		}
		key := "ip:" + c.ClientIP()
		if claims := common.GetClaimsFromContext(c); claims != nil {
			key = fmt.Sprintf("sub:%s", claims.Subject)
		}
		if !a.rateLimiter.Allow(key, a.rateLimiter.config.RequestsPerMin) {
			c.Header("Retry-After", "60")
			common.AbortError(c, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}
