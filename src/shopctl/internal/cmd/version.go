package cmd

import (
	"context"
	"fmt"

	"github.com/megaskyshop/storefront/src/shopctl/internal/output"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Shows the shopctl build. With --server, also queries the shopd server
and prints both builds side by side.`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	versionCmd.Flags().Bool("server", false, "Also show server version")
}

func runVersion(cmd *cobra.Command, args []string) error {
	showServer, _ := cmd.Flags().GetBool("server")

	local := VersionInfo.Map()
	result := map[string]interface{}{"client": local}

	var server map[string]string
	var serverErr error
	if showServer {
		server, serverErr = fetchServerVersion()
		if serverErr != nil {
			result["server_error"] = serverErr.Error()
		} else {
			result["server"] = server
		}
	}

	return output.PrintFormatted(getOutputFormat(), result, func() error {
		if !showServer {
			output.PrintMessage("shopctl " + VersionInfo.Full())
			return nil
		}

		headers := []string{"FIELD", "CLIENT", "SERVER"}
		var rows [][]string
		for _, k := range []string{"version", "release_version", "build_date", "git_commit", "go_version"} {
			sv := server[k]
			if serverErr != nil {
				sv = "-"
			}
			rows = append(rows, []string{k, local[k], sv})
		}
		output.PrintTable(headers, rows)
		if serverErr != nil {
			output.PrintError(fmt.Errorf("server: %w", serverErr))
		}
		return nil
	})
}

// fetchServerVersion returns the /v1/version body keyed like version.Info.Map
func fetchServerVersion() (map[string]string, error) {
	var resp map[string]string
	if err := getClient().Get(context.Background(), "/v1/version", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
