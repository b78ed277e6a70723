// =============================================================================
// Sales Data Processor - Configuration Module
// =============================================================================
//
// This module loads the application configuration from a YAML file.
//
// CONFIGURATION FILE (config.yaml):
//   input_dir: ./input
//   file_pattern: "*.txt"
//   output_dir: ./output
//   archive_dir: ""
//   output_formats: [xml, yaml]
//   output_name_format: "{original}_{timestamp}"
//   log_level: info
//   log_format: text
//   max_concurrency: 4
//   continue_on_error: true
//   source:
//     delimiter: "|"
//     encoding: UTF-8
//
// Every key is optional. Missing keys fall back to the defaults above.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when --config is not given.
const DefaultPath = "config.yaml"

// Output formats understood by the report writers.
const (
	FormatXML  = "xml"
	FormatXLSX = "xlsx"
	FormatYAML = "yaml"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for input files when no files are named on the
	// command line.
	InputDir string `yaml:"input_dir"`

	// FilePattern is the glob used to discover input files in InputDir.
	FilePattern string `yaml:"file_pattern"`

	// OutputDir receives the generated reports.
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives input files after they were processed successfully.
	// Archival is disabled when empty.
	ArchiveDir string `yaml:"archive_dir"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputFormats selects the report writers: "xml", "xlsx", "yaml".
	OutputFormats []string `yaml:"output_formats"`

	// OutputNameFormat is the report file name without extension.
	// Placeholders: {original}, {timestamp}, {date}, {time}, {uuid}.
	OutputNameFormat string `yaml:"output_name_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the number of files processed at once.
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing the remaining files after one fails.
	ContinueOnError *bool `yaml:"continue_on_error"`

	// Source holds the input file settings.
	Source SourceSettings `yaml:"source"`
}

// SourceSettings describes the layout of the input files.
type SourceSettings struct {
	// Delimiter separates fields. Accepts a single character or one of the
	// names "pipe", "tab", "comma", "semicolon".
	Delimiter string `yaml:"delimiter"`

	// Encoding must be UTF-8; it is kept explicit so configs document it.
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from path.
//
// An empty path returns the defaults. The default path is allowed to be
// absent; any other missing file is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document into a Config, then applies defaults and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.FilePattern == "" {
		cfg.FilePattern = "*.txt"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if len(cfg.OutputFormats) == 0 {
		cfg.OutputFormats = []string{FormatXML, FormatYAML}
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{original}_{timestamp}"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.ContinueOnError == nil {
		v := true
		cfg.ContinueOnError = &v
	}
	if cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = "|"
	}
	if cfg.Source.Encoding == "" {
		cfg.Source.Encoding = "UTF-8"
	}

	for i, f := range cfg.OutputFormats {
		cfg.OutputFormats[i] = strings.ToLower(strings.TrimSpace(f))
	}
}

// Validate checks the configuration for values no component can work with.
func (c *Config) Validate() error {
	if _, err := c.Source.DelimiterRune(); err != nil {
		return err
	}

	switch strings.ToUpper(strings.ReplaceAll(c.Source.Encoding, "-", "")) {
	case "UTF8":
	default:
		return fmt.Errorf("unsupported encoding %q: only UTF-8 is supported", c.Source.Encoding)
	}

	for _, f := range c.OutputFormats {
		switch f {
		case FormatXML, FormatXLSX, FormatYAML:
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}

	return nil
}

// KeepGoing reports whether processing continues after a failed file.
func (c *Config) KeepGoing() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// DelimiterRune resolves the configured delimiter to a single rune.
func (s SourceSettings) DelimiterRune() (rune, error) {
	switch strings.ToLower(s.Delimiter) {
	case "", "|", "pipe":
		return '|', nil
	case "\\t", "\t", "tab":
		return '\t', nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	}

	r := []rune(s.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s.Delimiter)
	}
	if r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("delimiter cannot be a line break")
	}
	return r[0], nil
}
