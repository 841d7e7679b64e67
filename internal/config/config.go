// =============================================================================
// SAF-T Export - Configuration Module
// =============================================================================
//
// This module loads and validates all configuration files:
//   1. Main Config (config.yaml): directories, logging, processing settings
//   2. SAF-T Settings (settings/*.yaml): one file per business, holding the
//      identification fields that go into the audit file Header
//
// PRECONDITION CONTRACT:
//   The export pipeline assumes SAF-T settings are present and complete.
//   Missing settings are detected HERE, at load time, and reported as
//   ErrMissingSetting. The core never runs against a partial settings
//   record and never emits a partial file because of one.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrMissingSetting is returned when a required SAF-T setting is absent or
// empty. The error message names the field.
var ErrMissingSetting = errors.New("missing SAF-T setting")

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration, loaded from the
// main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for record workbooks (.xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where generated SAF-T XML files are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is where record workbooks are moved after successful
	// processing. Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// SettingsDir is the directory containing per-business SAF-T settings
	// files. A workbook named <code>.xlsx pairs with <code>.yaml here.
	// Default: "./settings"
	SettingsDir string `yaml:"settings_dir"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of workbooks exported at once.
	// Each export pipeline is independent and shares no mutable state.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError determines whether remaining workbooks are processed
	// when one export fails. Default: true
	ContinueOnError bool `yaml:"continue_on_error"`
}

// =============================================================================
// SAF-T SETTINGS STRUCTURE
// =============================================================================

// SAFTSettings holds the identification data for one business: everything
// the Header section and the export filename are derived from, plus the
// configured invoice hash literal for the static hash collaborator.
type SAFTSettings struct {
	// BusinessID identifies the business these settings belong to.
	BusinessID int `yaml:"business_id"`

	// BusinessName is the business display name; it prefixes the export
	// filename.
	BusinessName string `yaml:"business_name"`

	// CurrencyCode is the business currency (Header CurrencyCode).
	CurrencyCode string `yaml:"currency_code"`

	// Header identification fields, as registered with the tax authority.
	CompanyID             string `yaml:"company_id"`
	TaxRegistrationNumber string `yaml:"tax_registration_number"`
	TaxAccountingBasis    string `yaml:"tax_accounting_basis"`
	CompanyName           string `yaml:"company_name"`
	CompanyAddressDetail  string `yaml:"company_address_detail"`
	CompanyAddressCity    string `yaml:"company_address_city"`
	CompanyAddressCountry string `yaml:"company_address_country"`
	TaxEntity             string `yaml:"tax_entity"`
	ProductCompanyTaxID   string `yaml:"product_company_tax_id"`
	SoftwareValidationNum string `yaml:"software_validation_number"`
	ProductID             string `yaml:"product_id"`

	// InvoiceHash is the literal served by the static hash collaborator
	// until a signing service is wired.
	InvoiceHash string `yaml:"invoice_hash"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file, applies
// defaults, and creates the configured directories if needed.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := ensureDirectories(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for unset options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.SettingsDir == "" {
		config.SettingsDir = "./settings"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
}

// ensureDirectories creates the configured directories if they don't exist.
func ensureDirectories(config *MainConfig) error {
	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.InputArchiveDir,
		config.SettingsDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

// LoadSAFTSettings loads and validates one business's SAF-T settings file.
// Every Header field is required: an absent or empty field returns
// ErrMissingSetting naming it, before any export work starts.
func LoadSAFTSettings(filePath string) (*SAFTSettings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings SAFTSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}

	return &settings, nil
}

// Validate checks that every required setting is present.
func (s *SAFTSettings) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"business_name", s.BusinessName},
		{"currency_code", s.CurrencyCode},
		{"company_id", s.CompanyID},
		{"tax_registration_number", s.TaxRegistrationNumber},
		{"tax_accounting_basis", s.TaxAccountingBasis},
		{"company_name", s.CompanyName},
		{"company_address_detail", s.CompanyAddressDetail},
		{"company_address_city", s.CompanyAddressCity},
		{"company_address_country", s.CompanyAddressCountry},
		{"tax_entity", s.TaxEntity},
		{"product_company_tax_id", s.ProductCompanyTaxID},
		{"software_validation_number", s.SoftwareValidationNum},
		{"product_id", s.ProductID},
	}

	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingSetting, field.name)
		}
	}
	return nil
}

// LoadAllSettings loads every settings file in a directory, keyed by file
// code (the file name without extension).
func LoadAllSettings(settingsDir string) (map[string]*SAFTSettings, error) {
	files, err := filepath.Glob(filepath.Join(settingsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list settings files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(settingsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list settings files: %w", err)
	}
	files = append(files, ymlFiles...)

	settings := make(map[string]*SAFTSettings)
	for _, file := range files {
		s, err := LoadSAFTSettings(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		base := filepath.Base(file)
		code := base[:len(base)-len(filepath.Ext(base))]
		settings[code] = s
	}

	return settings, nil
}
