// Package settings exposes the storage configuration and the registry status
// to the admin dashboard.
package settings

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/megaskyshop/storefront/src/common/logs"
	"github.com/megaskyshop/storefront/src/shopd/api/common"
)

var log = logs.NewDefault()

// SetLogger sets the logger for the settings package
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}

// NewHandler creates a new settings handler
func NewHandler(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Handler{
		store:    cfg.Store,
		registry: cfg.Registry,
		timeout:  cfg.Timeout,
	}
}

// HandleGetStorage returns the storage configuration
// @Summary      Get storage settings
// @Description  Credentials are masked unless reveal=true
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Param        reveal  query     bool  false  "Return credentials in clear"
// @Success      200     {object}  StorageSettingsResponse
// @Failure      500     {object}  common.ErrorResponse
// @Router       /v1/settings/storage [get]
func (h *Handler) HandleGetStorage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	cfg, err := h.store.ReadStorageConfig(ctx)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if c.Query("reveal") != "true" {
		cfg = cfg.Masked(MaskedValue)
	}
	c.JSON(http.StatusOK, StorageSettingsResponse{Settings: cfg})
}

// HandleUpdateStorage validates and stores a new storage configuration. The
// active driver is rebuilt on the next storage call.
// @Summary      Update storage settings
// @Description  Exactly one provider must be enabled. Masked credentials keep their stored value.
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      UpdateStorageSettingsRequest  true  "New storage settings"
// @Success      200   {object}  UpdateStorageSettingsResponse
// @Failure      400   {object}  common.ErrorResponse
// @Router       /v1/settings/storage [put]
func (h *Handler) HandleUpdateStorage(c *gin.Context) {
	var req UpdateStorageSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.InvalidJSON(c, err)
		return
	}
	if req.Settings == nil {
		common.BadRequest(c, "settings is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if prev, err := h.store.ReadStorageConfig(ctx); err == nil {
		req.Settings.Unmask(MaskedValue, prev)
	} else {
		log.Warn("Failed to read current storage settings", "error", err)
	}

	if err := h.store.WriteStorageConfig(ctx, req.Settings); err != nil {
		common.RespondError(c, err)
		return
	}

	saved, err := h.store.ReadStorageConfig(ctx)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	kind, _ := saved.Selected()
	log.Info("Storage settings updated", "provider", kind)

	c.JSON(http.StatusOK, UpdateStorageSettingsResponse{
		Settings: saved.Masked(MaskedValue),
		Message:  "Storage settings updated",
	})
}

// HandleStatus resolves the active driver and reports the registry state
// @Summary      Storage status
// @Description  Reports the active provider, whether it is a fallback and the last provider error
// @Tags         Settings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StorageStatusResponse
// @Router       /v1/storage/status [get]
func (h *Handler) HandleStatus(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	_, err := h.registry.Resolve(ctx)
	c.JSON(http.StatusOK, StorageStatusResponse{
		Status:    h.registry.Status(),
		Available: err == nil,
	})
}
