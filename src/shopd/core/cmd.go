// Package core provides the root command and server wiring for shopd.
package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/megaskyshop/storefront/src/common/cli"
	"github.com/megaskyshop/storefront/src/common/logs"
	"github.com/megaskyshop/storefront/src/common/version"
	"github.com/megaskyshop/storefront/src/shopd/auth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	// Global logger instance
	log *logs.Logger

	// Configuration file path
	cfgFile string
)

// Linker variables - these are set via ldflags at build time
var (
	Version        = "dev"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopd",
	Short: "Storefront media storage server",
	Long: `shopd serves the storefront media library.

Uploaded files go to the storage provider selected in the admin settings:
local disk, S3-compatible object storage or the managed blob service. When
the selected provider is unreachable shopd falls back to local disk.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin API token",
	Long: `Mint an admin token signed with the server's persisted secret.

The token is printed to stdout; pass it to "shopctl login".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		duration, _ := cmd.Flags().GetDuration("duration")
		return mintToken(cmd.Context(), subject, duration)
	},
}

// Execute runs the root command
func Execute() {
	VersionInfo = version.FromBuild(Version, ReleaseVersion, BuildDate, GitCommit)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "/etc/shopd/shopd.yaml")
	cli.RegisterLogFlags(rootCmd)

	// Server flags
	rootCmd.Flags().IntP("port", "p", 3001, "Port to listen on")
	rootCmd.Flags().StringP("bind", "b", "0.0.0.0", "Address to bind to")

	// Database flags
	rootCmd.PersistentFlags().String("db-driver", "sqlite", "Settings database driver: 'sqlite' or 'postgres'")
	rootCmd.PersistentFlags().String("db-path", "~/.shopd/shopd.db", "Path to persist the SQLite database on shutdown")
	rootCmd.PersistentFlags().String("db-dsn", "", "PostgreSQL connection string")

	// Storage flags
	rootCmd.Flags().String("asset-root", "public", "Public asset directory local uploads live under")
	rootCmd.Flags().String("base-url", "http://localhost:3000", "Public base URL for local file links")
	rootCmd.Flags().Bool("dev", false, "Return relative URLs for local files")
	rootCmd.Flags().Int64("max-upload-size", 10<<20, "Maximum upload size in bytes")

	tokenCmd.Flags().String("subject", "admin", "Token subject")
	tokenCmd.Flags().Duration("duration", 0, "Token lifetime (default 24h)")
	rootCmd.AddCommand(tokenCmd)

	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.bind", rootCmd.Flags().Lookup("bind"))
	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db-path"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))
	_ = viper.BindPFlag("storage.asset_root", rootCmd.Flags().Lookup("asset-root"))
	_ = viper.BindPFlag("storage.base_url", rootCmd.Flags().Lookup("base-url"))
	_ = viper.BindPFlag("storage.dev_mode", rootCmd.Flags().Lookup("dev"))
	_ = viper.BindPFlag("files.max_upload_size", rootCmd.Flags().Lookup("max-upload-size"))

	// Variables the storefront deployment already sets
	_ = viper.BindEnv("storage.blob.token", "SHOPD_STORAGE_BLOB_TOKEN", "BLOB_READ_WRITE_TOKEN")
	_ = viper.BindEnv("storage.base_url", "SHOPD_STORAGE_BASE_URL", "NEXTAUTH_URL")

	viper.SetDefault("server.port", 3001)
	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "~/.shopd/shopd.db")
	viper.SetDefault("storage.asset_root", "public")
	viper.SetDefault("storage.base_url", "http://localhost:3000")
	viper.SetDefault("storage.dev_mode", false)
	viper.SetDefault("storage.blob.api_url", "https://blob.vercel-storage.com")
	viper.SetDefault("storage.signed_url_expiry", "1h")
	viper.SetDefault("storage.operation_timeout", "30s")
	viper.SetDefault("files.max_upload_size", 10<<20)

	viper.SetDefault("security.master_key_path", "~/.shopd/master.key")
	viper.SetDefault("security.token_duration", "24h")
	viper.SetDefault("security.rate_limit.enabled", true)
	viper.SetDefault("security.rate_limit.requests_per_min", 300)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	opts := cli.ConfigOptions{
		ConfigName: "shopd",
		ConfigType: "yaml",
		EnvPrefix:  "SHOPD",
		SearchPaths: []string{
			"/etc/shopd",
			"~/.shopd",
			".",
		},
		DotEnvFiles: []string{".env", ".env.local"},
	}
	opts.ConfigFile = cfgFile

	if err := cli.InitConfig(opts); err != nil {
		return err
	}

	log = cli.InitLogger("shopd")

	return nil
}

// mintToken signs an admin token with the secret stored in the settings
// database, creating the secret on first use
func mintToken(ctx context.Context, subject string, duration time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Shutdown()

	jwtCfg := jwtConfig()
	if duration > 0 {
		jwtCfg.TokenDuration = duration
	}
	jwtService, err := auth.NewJWTService(ctx, jwtCfg, database)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	token, err := jwtService.GenerateToken(subject, true)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	fmt.Println(token)
	return nil
}

func jwtConfig() auth.JWTConfig {
	cfg := auth.DefaultJWTConfig()
	if d := viper.GetDuration("security.token_duration"); d > 0 {
		cfg.TokenDuration = d
	}
	return cfg
}
