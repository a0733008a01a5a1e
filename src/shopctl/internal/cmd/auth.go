package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/megaskyshop/storefront/src/shopctl/internal/client"
	"github.com/megaskyshop/storefront/src/shopctl/internal/config"
	"github.com/megaskyshop/storefront/src/shopctl/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store an admin token for the shopd server",
	Long: `Verifies an admin token against the shopd server and stores it locally.

Mint a token on the server host with "shopd token --subject <name>".`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringP("token", "t", "", "Admin token (prompted when omitted)")
}

func readToken(cmd *cobra.Command) (string, error) {
	token, _ := cmd.Flags().GetString("token")
	if token != "" {
		return strings.TrimSpace(token), nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Print("Token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	// Piped input: shopd token | shopctl login
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	token, err := readToken(cmd)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("no token provided")
	}

	serverURL := viper.GetString("server.url")
	c := client.New(serverURL)
	c.Token = token
	ctx := context.Background()

	// Any admin route proves the token; status is the cheapest
	if _, err := c.GetStorageStatus(ctx); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := config.SaveToken(&config.TokenData{
		AccessToken: token,
		ServerURL:   serverURL,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	apiClient = c

	return output.PrintFormatted(getOutputFormat(), map[string]string{
		"message": "Login successful",
		"server":  serverURL,
	}, func() error {
		output.PrintMessage(fmt.Sprintf("Logged in to %s", serverURL))
		return nil
	})
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	apiClient = nil

	return output.PrintFormatted(getOutputFormat(), map[string]string{"message": "Logged out"}, func() error {
		output.PrintMessage("Logged out successfully.")
		return nil
	})
}
