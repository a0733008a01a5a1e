package base

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/megaskyshop/storefront/src/common/version"
)

var VersionInfo = version.New()

// SetVersionInfo sets the version info for the base package
func SetVersionInfo(v *version.Info) {
	if v != nil {
		VersionInfo = v
	}
}

// NewHandler creates a new base handler
func NewHandler() *Handler {
	return &Handler{}
}

// HandleRoot returns API discovery information
// @Summary      API discovery
// @Tags         System
// @Produce      json
// @Success      200  {object}  APIInfo
// @Router       / [get]
func (h *Handler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, APIInfo{
		Name:        "shopd",
		Description: "Storefront media storage API",
		Version:     VersionInfo.Short(),
		APIVersions: []string{"v1"},
		Endpoints: APIInfoEndpoints{
			Health:   "/v1/health",
			Version:  "/v1/version",
			Files:    "/v1/files",
			Settings: "/v1/settings/storage",
			Status:   "/v1/storage/status",
		},
	})
}

// HandleHealth returns the current health status of the server
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /v1/health [get]
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleVersion returns version and build information for the server
// @Summary      Version information
// @Tags         System
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /v1/version [get]
func (h *Handler) HandleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Version:        VersionInfo.Short(),
		ReleaseVersion: VersionInfo.ReleaseVersion,
		BuildDate:      VersionInfo.BuildDate,
		GitCommit:      VersionInfo.GitCommit,
		GoVersion:      version.GoVersion(),
	})
}
