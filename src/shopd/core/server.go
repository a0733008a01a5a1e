package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/megaskyshop/storefront/src/common/cli"
	"github.com/megaskyshop/storefront/src/shopd/api"
	"github.com/megaskyshop/storefront/src/shopd/auth"
	"github.com/megaskyshop/storefront/src/shopd/db"
	_ "github.com/megaskyshop/storefront/src/shopd/docs"
	"github.com/megaskyshop/storefront/src/shopd/security"
	"github.com/megaskyshop/storefront/src/shopd/storage"
	"github.com/spf13/viper"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Server holds the HTTP server instance and its dependencies
type Server struct {
	router      *gin.Engine
	httpServer  *http.Server
	registry    *storage.Registry
	rateLimiter *api.RateLimiter
}

// ServerDeps are the components NewServer wires into the API
type ServerDeps struct {
	Source     *storage.SettingsSource
	Registry   *storage.Registry
	JWTService *auth.JWTService
}

// NewServer creates the gin router with all routes registered
func NewServer(deps ServerDeps) *Server {
	if viper.GetString("log.level") == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(ginLogger())

	var limiter *api.RateLimiter
	if viper.GetBool("security.rate_limit.enabled") {
		limiter = api.NewRateLimiter(api.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: viper.GetInt("security.rate_limit.requests_per_min"),
		})
	}

	api.SetLogger(log)
	api.SetVersionInfo(VersionInfo)
	apiInstance := api.New(api.Config{
		Files:         storage.NewService(deps.Registry),
		Store:         deps.Source,
		Registry:      deps.Registry,
		JWTService:    deps.JWTService,
		MaxUploadSize: viper.GetInt64("files.max_upload_size"),
		Timeout:       viper.GetDuration("storage.operation_timeout"),
		RateLimiter:   limiter,
	})

	apiInstance.RegisterRoutes(router)

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		router:      router,
		registry:    deps.Registry,
		rateLimiter: limiter,
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server and blocks until a shutdown signal or a
// listener error
func (s *Server) Run() error {
	bind := viper.GetString("server.bind")
	port := viper.GetInt("server.port")
	addr := fmt.Sprintf("%s:%d", bind, port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 30 * time.Second,
		// Uploads to remote providers can be slow
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		log.Info("Starting shopd server", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Warm the registry so a misconfigured provider shows up in the logs at
	// startup instead of on the first upload
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		d, err := s.registry.Resolve(ctx)
		if err != nil {
			log.Error("No storage provider available", "error", err)
			return
		}
		st := s.registry.Status()
		log.Info("Storage ready", "provider", d.Kind(), "location", d.Location(), "fallback", st.Fallback)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("Received signal, shutting down", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}

// corsMiddleware returns a gin middleware for handling CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Subject-Token")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// ginLogger returns a gin middleware for logging requests
func ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if query != "" {
			path = path + "?" + query
		}

		log.Debug("HTTP request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

func openDatabase() (*db.Database, error) {
	driver := viper.GetString("database.driver")
	log.Debug("Initializing database", "driver", driver)

	database, err := db.New(db.Config{
		Driver:      driver,
		PersistPath: viper.GetString("database.path"),
		LoadOnStart: true,
		DSN:         viper.GetString("database.dsn"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return database, nil
}

func storageOptions() storage.Options {
	opts := storage.DefaultOptions()
	opts.AssetRoot = cli.GetExpandedString("storage.asset_root")
	opts.BaseURL = viper.GetString("storage.base_url")
	opts.DevMode = viper.GetBool("storage.dev_mode") || os.Getenv("NODE_ENV") == "development"
	opts.BlobAPIURL = viper.GetString("storage.blob.api_url")
	opts.BlobToken = viper.GetString("storage.blob.token")
	if d := viper.GetDuration("storage.signed_url_expiry"); d > 0 {
		opts.SignedURLExpiry = d
	}
	return opts
}

// runServer is called by the root command to start the server
func runServer() error {
	log.Info("shopd starting",
		"version", VersionInfo.Version,
		"build_date", VersionInfo.BuildDate,
		"log_output", log.Output(),
	)

	database, err := openDatabase()
	if err != nil {
		return err
	}

	secrets, err := security.NewSecretManager(cli.GetExpandedString("security.master_key_path"))
	if err != nil {
		database.Shutdown()
		return fmt.Errorf("failed to initialize secret manager: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	jwtService, err := auth.NewJWTService(ctx, jwtConfig(), database)
	cancel()
	if err != nil {
		database.Shutdown()
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	// "shopd token" reads the signing secret from disk while the server runs
	if err := database.SaveToDisk(); err != nil {
		log.Warn("Failed to persist database", "error", err)
	}

	storage.SetLogger(log)
	opts := storageOptions()
	source := storage.NewSettingsSource(database, secrets)
	registry := storage.NewRegistry(source, opts)
	source.OnChange(registry.Invalidate)

	log.Info("Storage configured", "asset_root", opts.AssetRoot, "base_url", opts.BaseURL, "dev_mode", opts.DevMode)

	server := NewServer(ServerDeps{
		Source:     source,
		Registry:   registry,
		JWTService: jwtService,
	})

	err = server.Run()

	log.Info("Persisting database to disk")
	if dbErr := database.Shutdown(); dbErr != nil {
		log.Error("Failed to persist database", "error", dbErr)
		if err == nil {
			err = dbErr
		}
	} else {
		log.Info("Database persisted successfully")
	}

	return err
}
