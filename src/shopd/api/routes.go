package api

import "github.com/gin-gonic/gin"

// RegisterRoutes configures all API routes on the given router
func (a *API) RegisterRoutes(router *gin.Engine) {
	// Root endpoint - API discovery
	router.GET("/", a.Base.HandleRoot)

	v1 := router.Group("/v1")
	{
		v1.GET("/health", a.Base.HandleHealth)
		v1.GET("/version", a.Base.HandleVersion)
	}

	// Everything touching the media library or its configuration is admin only
	admin := router.Group("/v1")
	admin.Use(a.adminRequired(), a.rateLimit())
	{
		fileRoutes := admin.Group("/files")
		{
			fileRoutes.GET("", a.Files.HandleList)
			fileRoutes.POST("", a.Files.HandleUpload)
			fileRoutes.DELETE("", a.Files.HandleDelete)
			fileRoutes.GET("/url", a.Files.HandleGetURL)
		}

		admin.GET("/settings/storage", a.Settings.HandleGetStorage)
		admin.PUT("/settings/storage", a.Settings.HandleUpdateStorage)
		admin.GET("/storage/status", a.Settings.HandleStatus)
	}
}
