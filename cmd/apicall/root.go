package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCommand(version, commit, date string) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "apicall",
		Short: "apicall - HTTP client with certificate pinning",
		Long: `apicall issues HTTP requests through the API manager: connectivity check,
optional certificate or public key pinning for API_ROOT_URL, per-request
timeouts and typed error classification (offline, transport, decode, cancelled).

Configuration comes from API_* environment variables, optionally loaded from
a .env file, and can be overridden per invocation with flags.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(envFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")

	// Add subcommands
	rootCmd.AddCommand(newRequestCommand())
	rootCmd.AddCommand(newPinsCommand())

	return rootCmd
}

// loadEnvFile loads path without overriding variables already set. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
