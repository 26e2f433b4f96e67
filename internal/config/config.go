// Package config loads dander's settings.
//
// Global settings resolve from, highest first: command-line flags,
// DANDER_* environment variables, then the config file (.dander.yaml in the
// working directory or ~/.config/dander). The file's formats section holds
// the per-format defaults for the json, xml and format commands.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	keyLogLevel  = "log-level"
	keyLogFormat = "log-format"
	keyNoColor   = "no-color"
	keyQuiet     = "quiet"
	keyVerbose   = "verbose"

	envPrefix = "DANDER"
	fileName  = ".dander"
)

var (
	logLevels  = []string{LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError}
	logFormats = []string{LogFormatText, LogFormatJSON}
)

// Config is the resolved dander configuration.
type Config struct {
	LogLevel  string `mapstructure:"log-level" json:"logLevel"`
	LogFormat string `mapstructure:"log-format" json:"logFormat"`
	NoColor   bool   `mapstructure:"no-color" json:"noColor"`

	// Quiet limits logging to errors.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Verbose raises logging to debug unless Quiet is set.
	Verbose bool `mapstructure:"verbose" json:"verbose"`

	// Formats carries the formats section of the config file. Commands
	// fall back to it for every option not given on the command line.
	Formats FormatConfig `mapstructure:"-" json:"formats"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns the configuration used when no source sets anything.
func Default() *Config {
	return &Config{LogLevel: LogLevelInfo, LogFormat: LogFormatText}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q: must be one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q: must be one of %s", c.LogFormat, strings.Join(logFormats, ", "))
	}

	return c.Formats.Validate()
}

// EffectiveLogLevel applies Quiet and Verbose to LogLevel. Quiet wins.
func (c *Config) EffectiveLogLevel() string {
	switch {
	case c.Quiet:
		return LogLevelError
	case c.Verbose:
		return LogLevelDebug
	default:
		return c.LogLevel
	}
}

// Load resolves the configuration for cmd. configFile names an explicit
// file; when empty the default locations are searched and a missing file
// is not an error. Every call uses its own viper instance.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFormat, d.LogFormat)
	v.SetDefault(keyNoColor, d.NoColor)
	v.SetDefault(keyQuiet, d.Quiet)
	v.SetDefault(keyVerbose, d.Verbose)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	formats, err := LoadFormatConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg.Formats = *formats

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "dander"))
	}

	err := v.ReadInConfig()
	if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
		return nil
	}

	if err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// globalKeys may be bound to flags. Subcommand options such as --indent
// come from Formats instead.
var globalKeys = []string{keyLogLevel, keyLogFormat, keyNoColor, keyQuiet, keyVerbose}

// bindFlags binds each global key to the nearest flag of that name on cmd
// or its ancestors.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	for _, key := range globalKeys {
		if f := lookupFlag(cmd, key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %q: %w", key, err)
			}
		}
	}

	return nil
}

func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	for c := cmd; c != nil; c = c.Parent() {
		if f := c.Flags().Lookup(name); f != nil {
			return f
		}

		if f := c.PersistentFlags().Lookup(name); f != nil {
			return f
		}
	}

	return nil
}

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the Config stored in ctx, or Default.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
