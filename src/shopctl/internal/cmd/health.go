package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/megaskyshop/storefront/src/shopctl/internal/output"
	"github.com/spf13/cobra"
)

// HealthResult is what `shopctl health` reports: the server's /v1/health body
// plus the round trip seen from the client
type HealthResult struct {
	Server    string `json:"server"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	LatencyMS int64  `json:"latency_ms"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the shopd server is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := HealthResult{Server: c.BaseURL}
	start := time.Now()
	if err := c.Get(ctx, "/v1/health", &res); err != nil {
		return fmt.Errorf("%s is unreachable: %w", c.BaseURL, err)
	}
	res.LatencyMS = time.Since(start).Milliseconds()

	if err := output.PrintFormatted(getOutputFormat(), res, func() error {
		output.PrintTable([]string{"SERVER", "STATUS", "LATENCY"}, [][]string{
			{res.Server, res.Status, fmt.Sprintf("%dms", res.LatencyMS)},
		})
		return nil
	}); err != nil {
		return err
	}

	if res.Status != "healthy" {
		return fmt.Errorf("server reported status %q", res.Status)
	}
	return nil
}
