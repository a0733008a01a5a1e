package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/megaskyshop/storefront/src/shopctl/internal/client"
	"github.com/megaskyshop/storefront/src/shopctl/internal/output"
	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage the storage provider",
}

var storageGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the storage settings",
	Args:  cobra.NoArgs,
	RunE:  runStorageGet,
}

var storageSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Select and configure the storage provider",
	Long: `Selects the storage provider and sets its credentials. Flags that are not
given keep their stored value; the other providers are disabled.

Examples:
  shopctl storage set --provider local --path uploads
  shopctl storage set --provider s3 --bucket media --region eu-west-1 \
      --access-key AKIA... --secret-key ...
  shopctl storage set --provider vercelBlob --token vercel_blob_rw_...`,
	Args: cobra.NoArgs,
	RunE: runStorageSet,
}

var storageStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active provider and the last provider error",
	Args:  cobra.NoArgs,
	RunE:  runStorageStatus,
}

func init() {
	storageGetCmd.Flags().Bool("reveal", false, "Show credentials in clear")

	storageSetCmd.Flags().String("provider", "", "Provider: local, s3 or vercelBlob")
	storageSetCmd.Flags().String("path", "", "Local: directory under the public asset root")
	storageSetCmd.Flags().String("access-key", "", "S3: access key ID")
	storageSetCmd.Flags().String("secret-key", "", "S3: secret access key")
	storageSetCmd.Flags().String("bucket", "", "S3: bucket name")
	storageSetCmd.Flags().String("region", "", "S3: region")
	storageSetCmd.Flags().String("endpoint", "", "S3: custom endpoint for S3-compatible services")
	storageSetCmd.Flags().Bool("path-style", false, "S3: use path-style addressing")
	storageSetCmd.Flags().String("token", "", "Managed blob: read-write token")
	_ = storageSetCmd.MarkFlagRequired("provider")

	storageCmd.AddCommand(storageGetCmd)
	storageCmd.AddCommand(storageSetCmd)
	storageCmd.AddCommand(storageStatusCmd)
}

func runStorageGet(cmd *cobra.Command, args []string) error {
	reveal, _ := cmd.Flags().GetBool("reveal")

	c := getClient()
	ctx := context.Background()

	settings, err := c.GetStorageSettings(ctx, reveal)
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), settings, func() error {
		printSettingsTable(settings)
		return nil
	})
}

func printSettingsTable(s *client.StorageSettings) {
	rows := [][]string{{"Provider", s.Provider()}}
	switch s.Provider() {
	case "local":
		rows = append(rows, []string{"Path", s.Local.Path})
	case "s3":
		rows = append(rows,
			[]string{"Bucket", s.S3.Bucket},
			[]string{"Region", s.S3.Region},
			[]string{"Access Key", s.S3.AccessKey},
			[]string{"Secret Key", s.S3.SecretKey},
		)
		if s.S3.Endpoint != "" {
			rows = append(rows,
				[]string{"Endpoint", s.S3.Endpoint},
				[]string{"Path Style", strconv.FormatBool(s.S3.UsePathStyle)},
			)
		}
	case "vercelBlob":
		rows = append(rows, []string{"Token", s.VercelBlob.Token})
	}
	output.PrintTable([]string{"FIELD", "VALUE"}, rows)
}

// applyStorageFlags selects provider in s and overwrites the fields whose
// flags were given
func applyStorageFlags(cmd *cobra.Command, s *client.StorageSettings, provider string) error {
	str := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}

	s.Local.Enabled = provider == "local"
	s.S3.Enabled = provider == "s3"
	s.VercelBlob.Enabled = provider == "vercelBlob"

	switch provider {
	case "local":
		str("path", &s.Local.Path)
	case "s3":
		str("access-key", &s.S3.AccessKey)
		str("secret-key", &s.S3.SecretKey)
		str("bucket", &s.S3.Bucket)
		str("region", &s.S3.Region)
		str("endpoint", &s.S3.Endpoint)
		if cmd.Flags().Changed("path-style") {
			s.S3.UsePathStyle, _ = cmd.Flags().GetBool("path-style")
		}
	case "vercelBlob":
		str("token", &s.VercelBlob.Token)
	default:
		return fmt.Errorf("unknown provider %q (expected local, s3 or vercelBlob)", provider)
	}
	return nil
}

func runStorageSet(cmd *cobra.Command, args []string) error {
	provider, _ := cmd.Flags().GetString("provider")

	c := getClient()
	ctx := context.Background()

	// Start from the masked settings; the server keeps secrets sent back masked
	settings, err := c.GetStorageSettings(ctx, false)
	if err != nil {
		return err
	}
	if err := applyStorageFlags(cmd, settings, provider); err != nil {
		return err
	}

	saved, err := c.UpdateStorageSettings(ctx, settings)
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), saved, func() error {
		output.PrintMessage(fmt.Sprintf("Storage provider set to %s.", provider))
		return nil
	})
}

func runStorageStatus(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	st, err := c.GetStorageStatus(ctx)
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), st, func() error {
		rows := [][]string{
			{"State", st.State},
			{"Available", strconv.FormatBool(st.Available)},
			{"Provider", st.Provider},
			{"Configured", st.Configured},
			{"Fallback", strconv.FormatBool(st.Fallback)},
			{"Location", st.Location},
		}
		if st.LastError != "" {
			rows = append(rows,
				[]string{"Last Error Code", st.LastErrorCode},
				[]string{"Last Error", st.LastError},
			)
		}
		output.PrintTable([]string{"FIELD", "VALUE"}, rows)
		return nil
	})
}
