// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Introspection() IntrospectionConfig
	Browser() BrowserConfig

	SetPierceShadow(bool)
	SetVisibleOnly(bool)
	SetRefMode(string)
	SetVisibility(string)

	Validate() error
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg        LoggerConfig        `mapstructure:"logger" yaml:"logger"`
	IntrospectionCfg IntrospectionConfig `mapstructure:"introspection" yaml:"introspection"`
	BrowserCfg       BrowserConfig       `mapstructure:"browser" yaml:"browser"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig               { return c.LoggerCfg }
func (c *Config) Introspection() IntrospectionConfig { return c.IntrospectionCfg }
func (c *Config) Browser() BrowserConfig             { return c.BrowserCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetPierceShadow(b bool) { c.IntrospectionCfg.PierceShadow = b }
func (c *Config) SetVisibleOnly(b bool)  { c.IntrospectionCfg.VisibleOnly = b }
func (c *Config) SetRefMode(m string)    { c.IntrospectionCfg.RefMode = m }
func (c *Config) SetVisibility(m string) { c.IntrospectionCfg.Visibility = m }

// LoggerConfig holds all the configuration for the logger.
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

// IntrospectionConfig controls tree generation and selector evaluation defaults.
type IntrospectionConfig struct {
	// CacheEnabled wraps every top-level operation in a computation cache session.
	CacheEnabled    bool `mapstructure:"cache_enabled" yaml:"cache_enabled"`
	PierceShadow    bool `mapstructure:"pierce_shadow" yaml:"pierce_shadow"`
	VisibleOnly     bool `mapstructure:"visible_only" yaml:"visible_only"`
	InteractiveOnly bool `mapstructure:"interactive_only" yaml:"interactive_only"`
	// Visibility is one of "aria", "aria_or_visual", "aria_and_visual".
	Visibility string `mapstructure:"visibility" yaml:"visibility"`
	// RefMode is one of "all", "interactable", "none".
	RefMode       string  `mapstructure:"ref_mode" yaml:"ref_mode"`
	FoldGeneric   bool    `mapstructure:"fold_generic" yaml:"fold_generic"`
	BlockSpacing  bool    `mapstructure:"block_spacing" yaml:"block_spacing"`
	NearThreshold float64 `mapstructure:"near_threshold" yaml:"near_threshold"`
}

// BrowserConfig describes the simulated rendering surface.
type BrowserConfig struct {
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	// UserAgentCSS is appended to the built-in user agent stylesheet.
	UserAgentCSS string `mapstructure:"user_agent_css" yaml:"user_agent_css"`
}

// ViewportConfig is the size of the layout viewport in CSS pixels.
type ViewportConfig struct {
	Width  float64 `mapstructure:"width" yaml:"width"`
	Height float64 `mapstructure:"height" yaml:"height"`
}

var (
	validVisibility = []string{"aria", "aria_or_visual", "aria_and_visual"}
	validRefModes   = []string{"all", "interactable", "none"}
)

// NewDefaultConfig creates a new configuration struct populated with default values.
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
	v.SetDefault("logger.service_name", "scalpel-introspect")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Introspection --
	v.SetDefault("introspection.cache_enabled", true)
	v.SetDefault("introspection.pierce_shadow", true)
	v.SetDefault("introspection.visible_only", false)
	v.SetDefault("introspection.interactive_only", false)
	v.SetDefault("introspection.visibility", "aria_and_visual")
	v.SetDefault("introspection.ref_mode", "interactable")
	v.SetDefault("introspection.fold_generic", true)
	v.SetDefault("introspection.block_spacing", true)
	v.SetDefault("introspection.near_threshold", 50.0)

	// -- Browser --
	v.SetDefault("browser.viewport.width", 1280.0)
	v.SetDefault("browser.viewport.height", 720.0)
	v.SetDefault("browser.user_agent_css", "")
}

// Load unmarshals a populated viper instance into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.IntrospectionCfg.Validate(); err != nil {
		return fmt.Errorf("introspection configuration invalid: %w", err)
	}
	if c.BrowserCfg.Viewport.Width <= 0 || c.BrowserCfg.Viewport.Height <= 0 {
		return fmt.Errorf("browser.viewport width and height must be positive")
	}
	return nil
}

// Validate checks the IntrospectionConfig settings.
func (i *IntrospectionConfig) Validate() error {
	if !oneOf(i.Visibility, validVisibility) {
		return fmt.Errorf("visibility must be one of %s, got %q", strings.Join(validVisibility, ", "), i.Visibility)
	}
	if !oneOf(i.RefMode, validRefModes) {
		return fmt.Errorf("ref_mode must be one of %s, got %q", strings.Join(validRefModes, ", "), i.RefMode)
	}
	if i.NearThreshold < 0 {
		return fmt.Errorf("near_threshold must not be negative")
	}
	return nil
}

func oneOf(s string, options []string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
