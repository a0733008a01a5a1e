// Package cmd implements the shopctl commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/megaskyshop/storefront/src/common/cli"
	"github.com/megaskyshop/storefront/src/common/version"
	"github.com/megaskyshop/storefront/src/shopctl/internal/client"
	"github.com/megaskyshop/storefront/src/shopctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	// Configuration file path
	cfgFile string

	// Output format (table, json or yaml)
	outputFormat string

	// API client instance
	apiClient *client.Client
)

// Linker variables - set via ldflags at build time
var (
	Version        = "dev"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Storefront media storage CLI",
	Long: `shopctl is the command-line client for shopd.

It lists, uploads and deletes storefront media and manages the storage
provider settings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" && !cmd.Flags().Changed("server") {
			return nil
		}
		return initConfig()
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
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "~/.shopctl/shopctl.yaml")

	rootCmd.PersistentFlags().StringP("server", "s", "", "shopd server URL (default: http://localhost:3001)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json, yaml")

	cli.RegisterLogFlags(rootCmd)

	_ = viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	viper.SetDefault("server.url", "http://localhost:3001")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(storageCmd)

	_ = rootCmd.RegisterFlagCompletionFunc("output", completionOutputFormat)
	_ = storageSetCmd.RegisterFlagCompletionFunc("provider", completionProviders)
}

func initConfig() error {
	opts := cli.ConfigOptions{
		ConfigName: "shopctl",
		ConfigType: "yaml",
		EnvPrefix:  "SHOPCTL",
		SearchPaths: []string{
			"/etc/shopctl",
			"~/.shopctl",
		},
	}
	opts.ConfigFile = cfgFile

	return cli.InitConfig(opts)
}

// getClient returns the API client, creating it if needed.
// It loads the stored token for authentication.
func getClient() *client.Client {
	if apiClient == nil {
		serverURL := viper.GetString("server.url")

		tokenData, err := config.LoadToken()
		if err == nil && tokenData.AccessToken != "" {
			// A login is bound to the server it was made against
			if !rootCmd.PersistentFlags().Changed("server") && tokenData.ServerURL != "" {
				serverURL = tokenData.ServerURL
			}
		}

		apiClient = client.New(serverURL)
		if err == nil {
			apiClient.Token = tokenData.AccessToken
		}
	}
	return apiClient
}

// getOutputFormat returns the current output format
func getOutputFormat() string {
	return outputFormat
}

func completionOutputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
}

func completionProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"local\tLocal disk", "s3\tS3-compatible object storage", "vercelBlob\tManaged blob service"}, cobra.ShellCompDirectiveNoFileComp
}
