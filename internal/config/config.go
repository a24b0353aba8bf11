// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Runner  RunnerConfig  `mapstructure:"runner" yaml:"runner"`
}

// LoggerConfig defines settings for the application logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig tunes the managed browser instance.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	PollInterval      time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Args              []string      `mapstructure:"args" yaml:"args"`
}

// RunnerConfig controls how scripts are scheduled and where their artifacts
// are written.
type RunnerConfig struct {
	OutputDir   string        `mapstructure:"output_dir" yaml:"output_dir"`
	Demo        bool          `mapstructure:"demo" yaml:"demo"`
	Pacing      time.Duration `mapstructure:"pacing" yaml:"pacing"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Datatable   string        `mapstructure:"datatable" yaml:"datatable"`
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "terrier-cli")
	v.SetDefault("logger.log_file", "terrier.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.navigation_timeout", "90s")
	v.SetDefault("browser.poll_interval", "1s")
	v.SetDefault("browser.args", []string{})

	// -- Runner --
	v.SetDefault("runner.output_dir", ".")
	v.SetDefault("runner.demo", false)
	v.SetDefault("runner.pacing", "1s")
	v.SetDefault("runner.concurrency", 1)
	v.SetDefault("runner.datatable", "")
}

// Load reads configuration from a file, applying defaults and environment
// overrides (TERRIER_ prefixed, with dots mapped to underscores so nested
// keys like logger.level bind to TERRIER_LOGGER_LEVEL). When path is empty
// it searches the working directory for config.yaml; a missing file is not
// an error in that case, defaults and env vars carry the day.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TERRIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Browser.NavigationTimeout < 0 {
		return fmt.Errorf("browser.navigation_timeout must not be negative")
	}
	if c.Browser.PollInterval < 0 {
		return fmt.Errorf("browser.poll_interval must not be negative")
	}
	if c.Runner.Pacing < 0 {
		return fmt.Errorf("runner.pacing must not be negative")
	}
	if c.Runner.Concurrency < 1 {
		return fmt.Errorf("runner.concurrency must be at least 1, got %d", c.Runner.Concurrency)
	}
	return nil
}
