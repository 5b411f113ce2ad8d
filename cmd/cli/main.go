package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	baseURL   string
	timeout   time.Duration
	principal string
	token     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "assetvault-cli",
		Short:         "AssetVault CLI tool",
		Long:          `A command line interface for interacting with the AssetVault API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", envOr("ASSETVAULT_URL", "http://localhost:8080"), "Base URL of the AssetVault API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.principal, "as", os.Getenv("ASSETVAULT_PRINCIPAL"), "Principal sent in the X-Principal header")
	flags.StringVar(&opts.token, "token", os.Getenv("ASSETVAULT_TOKEN"), "Bearer token, takes precedence over --as")

	rootCmd.AddCommand(
		vaultCmd(opts),
		assetsCmd(opts),
		balancesCmd(opts),
		historyCmd(opts),
		depositCmd(opts),
		withdrawCmd(opts),
		adminCmd(opts),
		rolesCmd(opts),
		tokenCmd(),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
