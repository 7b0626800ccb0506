package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	trackerrors "modtrack/internal/errors"
	"modtrack/internal/paths"
)

// CurrentVersion is the only supported config schema version.
const CurrentVersion = 1

// History backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config represents the complete modtrack configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Output   OutputConfig   `json:"output" mapstructure:"output"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Scanners ScannersConfig `json:"scanners" mapstructure:"scanners"`
	Rules    RulesConfig    `json:"rules" mapstructure:"rules"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// OutputConfig controls where reports are written. Relative paths are
// resolved against the repository root.
type OutputConfig struct {
	Dir      string `json:"dir" mapstructure:"dir"`
	JSONFile string `json:"jsonFile" mapstructure:"jsonFile"`
	HTMLFile string `json:"htmlFile" mapstructure:"htmlFile"`
	// Archive keeps a zstd copy of every report under Dir/archive
	Archive bool `json:"archive" mapstructure:"archive"`
}

// HistoryConfig selects the snapshot store. File and DBFile are relative to
// the output directory.
type HistoryConfig struct {
	Backend string `json:"backend" mapstructure:"backend"`
	File    string `json:"file" mapstructure:"file"`
	DBFile  string `json:"dbFile" mapstructure:"dbFile"`
	Limit   int    `json:"limit" mapstructure:"limit"`
}

// ScannersConfig contains module discovery settings
type ScannersConfig struct {
	Enabled         []string `json:"enabled" mapstructure:"enabled"`
	Ignore          []string `json:"ignore" mapstructure:"ignore"`
	LegacyRoots     []string `json:"legacyRoots" mapstructure:"legacyRoots"`
	DeclarationFile string   `json:"declarationFile" mapstructure:"declarationFile"`
}

// RulesConfig contains rule settings
type RulesConfig struct {
	Enabled []string `json:"enabled" mapstructure:"enabled"`
	File    string   `json:"file" mapstructure:"file"`
	// CacheSize is the number of directory listings kept per run
	CacheSize int `json:"cacheSize" mapstructure:"cacheSize"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Output: OutputConfig{
			Dir:      ".modtrack/output",
			JSONFile: "module-tracker.json",
			HTMLFile: "index.html",
		},
		History: HistoryConfig{
			Backend: BackendJSON,
			File:    "history.json",
			DBFile:  "history.db",
			Limit:   100,
		},
		Scanners: ScannersConfig{
			Enabled:         []string{"declared", "manifest", "legacy"},
			Ignore:          []string{"node_modules", "build", ".build", "vendor", "Pods", "DerivedData"},
			LegacyRoots:     []string{},
			DeclarationFile: "MODULES.toml",
		},
		Rules: RulesConfig{
			Enabled:   []string{"language", "source_files", "complexity", "has_readme"},
			File:      ".modtrack/rules.yaml",
			CacheSize: 512,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxBackups: 3,
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.jsonFile", d.Output.JSONFile)
	v.SetDefault("output.htmlFile", d.Output.HTMLFile)
	v.SetDefault("output.archive", d.Output.Archive)

	v.SetDefault("history.backend", d.History.Backend)
	v.SetDefault("history.file", d.History.File)
	v.SetDefault("history.dbFile", d.History.DBFile)
	v.SetDefault("history.limit", d.History.Limit)

	v.SetDefault("scanners.enabled", d.Scanners.Enabled)
	v.SetDefault("scanners.ignore", d.Scanners.Ignore)
	v.SetDefault("scanners.legacyRoots", d.Scanners.LegacyRoots)
	v.SetDefault("scanners.declarationFile", d.Scanners.DeclarationFile)

	v.SetDefault("rules.enabled", d.Rules.Enabled)
	v.SetDefault("rules.file", d.Rules.File)
	v.SetDefault("rules.cacheSize", d.Rules.CacheSize)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from .modtrack/config.json. Keys missing
// from the file keep their defaults; a missing file yields DefaultConfig.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("json")
	v.SetConfigFile(paths.ConfigPath(repoRoot))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, trackerrors.New(trackerrors.ConfigInvalid, "cannot read "+filepath.Base(paths.ConfigPath(repoRoot)), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, trackerrors.New(trackerrors.ConfigInvalid, "cannot decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, trackerrors.New(trackerrors.ConfigInvalid, "invalid configuration", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	switch c.History.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return &ConfigError{Field: "history.backend", Message: fmt.Sprintf("unknown backend %q", c.History.Backend)}
	}
	if c.History.Limit <= 0 {
		return &ConfigError{Field: "history.limit", Message: "must be positive"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}
	return nil
}

// OutputDir returns the absolute output directory.
func (c *Config) OutputDir(root string) string {
	return paths.Resolve(root, c.Output.Dir)
}

// StorePath returns where backend keeps history inside outputDir.
func (h HistoryConfig) StorePath(backend, outputDir string) string {
	if backend == BackendSQLite {
		return paths.Resolve(outputDir, h.DBFile)
	}
	return paths.Resolve(outputDir, h.File)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
