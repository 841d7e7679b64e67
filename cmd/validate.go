// =============================================================================
// SAF-T Export - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the main
// configuration and every per-business SAF-T settings file without
// exporting anything. Incomplete settings are the most common precondition
// failure, so this gives a fast answer before a real run.
//
// COMMAND USAGE:
//   saftexport validate
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saqlainkhadim/saft-export/internal/config"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and SAF-T settings without exporting",
	Long: `The validate command loads the main configuration file and every SAF-T
settings file in the settings directory, reporting missing or incomplete
settings. No records are read and no files are written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate loads and checks all configuration.
func runValidate() error {
	fmt.Println("=== SAF-T Export: Validate ===")

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("main config: %w", err)
	}
	fmt.Printf("Main config OK (input: %s, output: %s, settings: %s)\n",
		mainConfig.InputDir, mainConfig.OutputDir, mainConfig.SettingsDir)

	settings, err := config.LoadAllSettings(mainConfig.SettingsDir)
	if err != nil {
		return fmt.Errorf("SAF-T settings: %w", err)
	}
	if len(settings) == 0 {
		fmt.Println("Warning: no SAF-T settings files found; nothing can be exported.")
		return nil
	}

	for code, s := range settings {
		fmt.Printf("  ✓ %s (%s, business %d)\n", code, s.CompanyName, s.BusinessID)
	}
	fmt.Printf("%d settings file(s) OK\n", len(settings))

	return nil
}
