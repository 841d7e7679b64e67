// =============================================================================
// SAF-T Export - Main Entry Point
// =============================================================================
//
// This is the main entry point for the SAF-T Export CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   saftexport export    - Export SAF-T audit files for a reporting period
//   saftexport validate  - Validate configuration and SAF-T settings
//   saftexport version   - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//   - settings/      : Contains per-business SAF-T settings (YAML)
//
// =============================================================================

package main

import (
	"github.com/saqlainkhadim/saft-export/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
