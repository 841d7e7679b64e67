// =============================================================================
// SAF-T Export - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'export', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (saftexport)
//   ├── exportCmd  (saftexport export)
//   ├── validateCmd (saftexport validate)
//   └── versionCmd (saftexport version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose output when set to true.
var verbose bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "saftexport",

	Short: "SAF-T Export - Generate SAF-T (AO 1.01_01) audit files from sales records",

	Long: `SAF-T Export is a CLI tool that converts a business's sales, payment,
customer, product, and tax-rate records into compliant SAF-T audit files
for a reporting period.

Key Features:
  - Full AuditFile document: Header, MasterFiles, SourceDocuments
  - Exact decimal aggregation of invoice totals and tax payable
  - Payment reconciliation across multi-line payments
  - Per-business SAF-T settings with completeness validation
  - Concurrent processing of independent record workbooks

Example Usage:
  saftexport export --from 2023-01-01 --to 2023-12-31
  saftexport export --config ./my.yaml --from 2023-01-01 --to 2023-03-31
  saftexport validate`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}
