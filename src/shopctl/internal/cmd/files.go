package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/megaskyshop/storefront/src/shopctl/internal/output"
	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:     "files",
	Aliases: []string{"file", "f"},
	Short:   "Manage storefront media files",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Args:  cobra.NoArgs,
	RunE:  runFilesList,
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesUpload,
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete <url>",
	Short: "Delete a file by the URL upload returned",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesDelete,
}

var filesURLCmd = &cobra.Command{
	Use:   "url <path>",
	Short: "Resolve a stored file to a fetchable URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runFilesURL,
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesUploadCmd)
	filesCmd.AddCommand(filesDeleteCmd)
	filesCmd.AddCommand(filesURLCmd)
}

func runFilesList(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	resp, err := c.ListFiles(ctx)
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), resp, func() error {
		if resp.Count == 0 {
			output.PrintMessage("No files found.")
			return nil
		}
		rows := make([][]string, len(resp.Files))
		for i, f := range resp.Files {
			rows[i] = []string{f.Name, output.FormatSize(f.Size), f.UploadedAt.Local().Format(time.DateTime), f.URL}
		}
		output.PrintTable([]string{"NAME", "SIZE", "UPLOADED", "URL"}, rows)
		return nil
	})
}

func runFilesUpload(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	type uploaded struct {
		File string `json:"file"`
		URL  string `json:"url"`
		Size int64  `json:"size"`
	}
	results := make([]uploaded, 0, len(args))
	for _, path := range args {
		resp, err := c.UploadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", filepath.Base(path), err)
		}
		results = append(results, uploaded{File: path, URL: resp.URL, Size: resp.Size})
	}

	return output.PrintFormatted(getOutputFormat(), results, func() error {
		for _, r := range results {
			output.PrintMessage(fmt.Sprintf("Uploaded %s -> %s", filepath.Base(r.File), r.URL))
		}
		return nil
	})
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	if err := c.DeleteFile(ctx, args[0]); err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), map[string]string{"message": "File deleted", "url": args[0]}, func() error {
		output.PrintMessage(fmt.Sprintf("Deleted %s.", args[0]))
		return nil
	})
}

func runFilesURL(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	u, err := c.GetFileURL(ctx, args[0])
	if err != nil {
		return err
	}

	return output.PrintFormatted(getOutputFormat(), map[string]string{"url": u}, func() error {
		output.PrintMessage(u)
		return nil
	})
}
