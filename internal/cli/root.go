// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-gssname.
//
// go-gssname is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package cli implements the gssname command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global configuration
	globalConfig *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gssname",
	Short: "gssname CLI - Security principal name tool",
	Long: `gssname CLI provides a command-line interface for importing,
comparing, canonicalizing and exporting security principal names,
and for decoding mechanism status codes into readable messages.

Name type OIDs (dotted decimal):
  - 1.2.840.113554.1.2.1.1  user name (user@REALM)
  - 1.2.840.113554.1.2.1.4  host-based service (service@host)
  - 1.2.840.113554.1.2.2.1  Kerberos v5 principal
  - 1.3.6.1.5.6.3           anonymous
  - 1.3.6.1.5.6.4           exported name token`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	globalConfig = NewConfig()

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&globalConfig.Provider, "provider", "software",
		"mechanism provider to use")
	rootCmd.PersistentFlags().StringVar(&globalConfig.Realm, "realm", "",
		"default realm for canonicalization")
	rootCmd.PersistentFlags().StringVarP(&globalConfig.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&globalConfig.Verbose, "verbose", "v", false,
		"verbose output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mechanismsCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(statusCmd)
}

// getConfig returns the global configuration
func getConfig() *Config {
	return globalConfig
}

// printVerbose prints diagnostic output to stderr in verbose mode
func printVerbose(format string, args ...interface{}) {
	if globalConfig.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// handleError prints an error and exits with code 1
func handleError(err error) {
	printer := NewPrinter(globalConfig.OutputFormat, os.Stderr)
	_ = printer.PrintError(err) // Error printing to stderr is best-effort
	os.Exit(1)
}
