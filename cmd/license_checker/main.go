// Package main provides the entry point for the license_checker CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "license_checker [--pkg NAME [NAME...]]",
	Short: "List installed Python packages with their licenses",
	Long: `Reads every installed package from the python site directories and prints one line per package:

  name <TAB> homepage <TAB> license URL <TAB> version <TAB> declared license

The declared license comes from the package metadata. The license URL is found by resolving the
homepage to a GitHub project and asking the license API, then probing conventional license file names.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.`,
	Args:          cobra.ArbitraryArgs,
	RunE:          runCheck,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
