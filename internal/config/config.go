// Package config provides configuration management for the employee formatter.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingEmailDomain     = errors.New("company.email_domain is required")
	ErrInvalidEmailDomain     = errors.New("company.email_domain must not contain '@' or whitespace")
	ErrNoDepartments          = errors.New("salary.departments must list at least one department")
	ErrNegativeBaseSalary     = errors.New("salary.departments base salaries must be non-negative")
	ErrMissingManagerRole     = errors.New("salary.manager_role is required")
	ErrInvalidMultiplier      = errors.New("salary multipliers must be positive")
	ErrInvalidStateCode       = errors.New("salary.expensive_states entries must be two-letter codes")
	ErrNoFormatFields         = errors.New("format.fields must list at least one field")
	ErrInvalidOutputSuffix    = errors.New("output.suffix must end in '.json'")
	ErrInvalidIndent          = errors.New("output.indent must be between 0 and 8")
	ErrInvalidPhoneDigits     = errors.New("validation.phone_digits must be at least 1")
	ErrInvalidZipDigits       = errors.New("validation.zip_digits must be at least 1")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrMissingMetricsTextfile = errors.New("metrics.textfile is required when metrics are enabled")
)

// Config represents the complete formatter configuration.
type Config struct {
	Company    CompanyConfig    `yaml:"company"`
	Salary     SalaryConfig     `yaml:"salary"`
	Format     FormatConfig     `yaml:"format"`
	Validation ValidationConfig `yaml:"validation"`
	Output     OutputConfig     `yaml:"output"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CompanyConfig holds company-wide settings.
type CompanyConfig struct {
	EmailDomain string `yaml:"email_domain"`
}

// SalaryConfig holds the salary table and adjustment rules.
type SalaryConfig struct {
	Departments     map[string]int64 `yaml:"departments"`
	ExpensiveStates []string         `yaml:"expensive_states"`
	ManagerRole     string           `yaml:"manager_role"`
	Multipliers     MultiplierConfig `yaml:"multipliers"`
}

// MultiplierConfig defines salary adjustments, applied in field order of precedence.
type MultiplierConfig struct {
	ManagerExpensive float64 `yaml:"manager_expensive"`
	Expensive        float64 `yaml:"expensive"`
	Manager          float64 `yaml:"manager"`
}

// FormatConfig lists the fields that get whitespace and casing normalization.
type FormatConfig struct {
	Fields []string `yaml:"fields"`
}

// ValidationConfig defines the digit counts required for contact fields.
type ValidationConfig struct {
	PhoneDigits int `yaml:"phone_digits"`
	ZipDigits   int `yaml:"zip_digits"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Suffix string `yaml:"suffix"`
	Indent int    `yaml:"indent"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Company: CompanyConfig{EmailDomain: "comp.com"},
		Salary: SalaryConfig{
			Departments: map[string]int64{
				"SA": 60000,
				"HR": 70000,
				"IT": 80000,
			},
			ExpensiveStates: []string{"NY", "CA", "OR", "WA", "VT"},
			ManagerRole:     "MNG",
			Multipliers: MultiplierConfig{
				ManagerExpensive: 1.065,
				Expensive:        1.015,
				Manager:          1.05,
			},
		},
		Format: FormatConfig{
			Fields: []string{
				"First Name", "Last Name", "Address Line 1",
				"Address Line 2", "City", "Job Title",
			},
		},
		Validation: ValidationConfig{PhoneDigits: 10, ZipDigits: 5},
		Output:     OutputConfig{Suffix: "_formatted.json", Indent: 4},
		Logging:    LoggingConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()

	// Maps merge key by key under yaml.v3; the salary table is replaced wholesale instead.
	var probe struct {
		Salary struct {
			Departments map[string]int64 `yaml:"departments"`
		} `yaml:"salary"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if probe.Salary.Departments != nil {
		cfg.Salary.Departments = nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Marshal returns the YAML encoding of the configuration.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	domain := c.Company.EmailDomain
	if domain == "" {
		return ErrMissingEmailDomain
	}

	if strings.ContainsAny(domain, "@ \t\n") {
		return ErrInvalidEmailDomain
	}

	if len(c.Salary.Departments) == 0 {
		return ErrNoDepartments
	}

	for dept, base := range c.Salary.Departments {
		if base < 0 {
			return fmt.Errorf("%w: %s", ErrNegativeBaseSalary, dept)
		}
	}

	if c.Salary.ManagerRole == "" {
		return ErrMissingManagerRole
	}

	m := c.Salary.Multipliers
	if m.ManagerExpensive <= 0 || m.Expensive <= 0 || m.Manager <= 0 {
		return ErrInvalidMultiplier
	}

	for i, st := range c.Salary.ExpensiveStates {
		if len(st) != 2 {
			return fmt.Errorf("%w: expensive_states[%d]=%q", ErrInvalidStateCode, i, st)
		}
	}

	if len(c.Format.Fields) == 0 {
		return ErrNoFormatFields
	}

	if c.Validation.PhoneDigits < 1 {
		return ErrInvalidPhoneDigits
	}

	if c.Validation.ZipDigits < 1 {
		return ErrInvalidZipDigits
	}

	if !strings.HasSuffix(c.Output.Suffix, ".json") {
		return ErrInvalidOutputSuffix
	}

	if c.Output.Indent < 0 || c.Output.Indent > 8 {
		return ErrInvalidIndent
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return ErrMissingMetricsTextfile
	}

	return nil
}

// IsExpensiveState reports whether state is in the expensive-state set.
func (s *SalaryConfig) IsExpensiveState(state string) bool {
	for _, st := range s.ExpensiveStates {
		if st == state {
			return true
		}
	}

	return false
}

// BaseSalary returns the base salary for dept, or 0 for an unknown department.
func (s *SalaryConfig) BaseSalary(dept string) int64 {
	return s.Departments[dept]
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Domain: %s, Departments: %d, ExpensiveStates: %d, Suffix: %s}",
		c.Company.EmailDomain,
		len(c.Salary.Departments),
		len(c.Salary.ExpensiveStates),
		c.Output.Suffix,
	)
}
