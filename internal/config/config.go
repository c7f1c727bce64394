// Package config loads canon settings through Viper from .canon.yml files,
// CANON_ environment variables, and command-line flags.
//
// Load applies defaults for anything left unset and validates the result;
// ValidateConfigWithDetails reports the same problems with suggestions and
// adds non-fatal warnings.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/conneroisu/canon/internal/dom"
	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// Defaults.
const (
	DefaultPageSize         = 10
	DefaultCarouselInterval = 5 * time.Second
	DefaultRootMargin       = "-20% 0px -70% 0px"
	DefaultCalendarColumns  = 7
	DefaultCalendarPageRows = 4
	DefaultPort             = 7331
	DefaultHost             = "localhost"
	DefaultDebounce         = 200 * time.Millisecond
	DefaultStoragePath      = ".canon/state.msgpack"
)

// EnvPrefix prefixes environment overrides, e.g. CANON_DATATABLE_PAGE_SIZE.
const EnvPrefix = "CANON"

// SetupEnv makes the global viper instance read CANON_ variables.
func SetupEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

type Config struct {
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Behaviors BehaviorsConfig `mapstructure:"behaviors" yaml:"behaviors"`
	DataTable DataTableConfig `mapstructure:"datatable" yaml:"datatable"`
	Carousel  CarouselConfig  `mapstructure:"carousel" yaml:"carousel"`
	TOC       TOCConfig       `mapstructure:"toc" yaml:"toc"`
	Calendar  CalendarConfig  `mapstructure:"calendar" yaml:"calendar"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BehaviorsConfig selects markers. An empty Enabled list means all.
type BehaviorsConfig struct {
	Enabled  []string `mapstructure:"enabled" yaml:"enabled"`
	Disabled []string `mapstructure:"disabled" yaml:"disabled"`
}

type DataTableConfig struct {
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

type CarouselConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

type TOCConfig struct {
	RootMargin string `mapstructure:"root_margin" yaml:"root_margin"`
}

type CalendarConfig struct {
	Columns  int `mapstructure:"columns" yaml:"columns"`
	PageRows int `mapstructure:"page_rows" yaml:"page_rows"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" yaml:"port"`
	Host           string   `mapstructure:"host" yaml:"host"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type WatchConfig struct {
	Paths    []string      `mapstructure:"paths" yaml:"paths"`
	Patterns []string      `mapstructure:"patterns" yaml:"patterns"`
	Ignore   []string      `mapstructure:"ignore" yaml:"ignore"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type StorageConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Load reads the global viper instance into a Config.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, canonerrors.NewConfigError(canonerrors.ErrCodeInvalidConfig,
			fmt.Sprintf("decoding configuration: %v", err))
	}

	// Slices set via flags or env arrive as strings.
	if viper.IsSet("behaviors.enabled") {
		config.Behaviors.Enabled = viper.GetStringSlice("behaviors.enabled")
	}
	if viper.IsSet("behaviors.disabled") {
		config.Behaviors.Disabled = viper.GetStringSlice("behaviors.disabled")
	}
	if viper.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}
	if viper.IsSet("watch.patterns") {
		config.Watch.Patterns = viper.GetStringSlice("watch.patterns")
	}

	applyDefaults(&config, viper.IsSet)

	if err := validateConfig(&config); err != nil {
		return nil, canonerrors.NewConfigError(canonerrors.ErrCodeInvalidConfig,
			fmt.Sprintf("invalid configuration: %v", err))
	}
	return &config, nil
}

// Default returns a configuration holding only defaults.
func Default() *Config {
	var config Config
	applyDefaults(&config, func(string) bool { return false })
	return &config
}

// applyDefaults fills zero values. Keys reported by isSet keep an explicit
// zero so validation can reject it.
func applyDefaults(config *Config, isSet func(string) bool) {
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if !isSet("datatable.page_size") && config.DataTable.PageSize == 0 {
		config.DataTable.PageSize = DefaultPageSize
	}
	if !isSet("carousel.interval") && config.Carousel.Interval == 0 {
		config.Carousel.Interval = DefaultCarouselInterval
	}
	if config.TOC.RootMargin == "" {
		config.TOC.RootMargin = DefaultRootMargin
	}
	if !isSet("calendar.columns") && config.Calendar.Columns == 0 {
		config.Calendar.Columns = DefaultCalendarColumns
	}
	if !isSet("calendar.page_rows") && config.Calendar.PageRows == 0 {
		config.Calendar.PageRows = DefaultCalendarPageRows
	}
	if !isSet("server.port") && config.Server.Port == 0 {
		config.Server.Port = DefaultPort
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	if len(config.Watch.Paths) == 0 {
		config.Watch.Paths = []string{"."}
	}
	if len(config.Watch.Patterns) == 0 {
		config.Watch.Patterns = []string{"**/*.html", "**/*.yaml", "**/*.yml"}
	}
	if len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = []string{".git/**", "node_modules/**", "_examples/**"}
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}
	if config.Storage.Path == "" {
		config.Storage.Path = DefaultStoragePath
	}
}

// validateConfig validates configuration values for correctness.
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateBehaviorConfig(config); err != nil {
		return fmt.Errorf("behavior config: %w", err)
	}
	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := validatePath(config.Storage.Path); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Port 0 lets the system assign one.
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}
	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			return err
		}
	}
	return nil
}

func validateBehaviorConfig(config *Config) error {
	if config.DataTable.PageSize <= 0 {
		return fmt.Errorf("datatable.page_size must be positive, got %d", config.DataTable.PageSize)
	}
	if config.Carousel.Interval <= 0 {
		return fmt.Errorf("carousel.interval must be positive, got %s", config.Carousel.Interval)
	}
	if config.Calendar.Columns <= 0 || config.Calendar.PageRows <= 0 {
		return fmt.Errorf("calendar columns and page_rows must be positive, got %d and %d",
			config.Calendar.Columns, config.Calendar.PageRows)
	}
	if _, err := dom.ParseRootMargin(config.TOC.RootMargin); err != nil {
		return fmt.Errorf("toc.root_margin: %w", err)
	}
	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid watch path '%s': %w", path, err)
		}
	}
	for _, pattern := range append(append([]string{}, config.Patterns...), config.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern '%s'", pattern)
		}
	}
	if config.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %s", config.Debounce)
	}
	return nil
}

func validateHostname(host string) error {
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %q", char)
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}
	return nil
}
