package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("Validation errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("Validation warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    hint: %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) fail(field string, value interface{}, msg string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

func (vr *ValidationResult) warn(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: msg, Suggestions: suggestions})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateLogDetails(&config.Log, result)
	validateServerConfigDetails(&config.Server, result)
	validateBehaviorsDetails(config, result)
	validateWatchDetails(&config.Watch, result)

	if err := validatePath(config.Storage.Path); err != nil {
		result.fail("storage.path", config.Storage.Path, err.Error(),
			"Use a relative path such as .canon/state.msgpack")
	}

	result.Valid = !result.HasErrors()
	return result
}

func validateLogDetails(config *LogConfig, result *ValidationResult) {
	levels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(levels, strings.ToLower(config.Level)) {
		result.warn("log.level", config.Level, "unknown log level, falling back to info",
			"Available levels: "+strings.Join(levels, ", "))
	}
	if config.Format != "text" && config.Format != "json" {
		result.warn("log.format", config.Format, "unknown log format, falling back to text",
			"Use 'text' for terminals or 'json' for log collectors")
	}
}

func validateServerConfigDetails(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.fail("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.warn("server.port", config.Port, "port below 1024 requires elevated privileges",
			"Consider using a port above 1024 for development")
	}

	if config.Host != "" {
		if err := validateHostname(config.Host); err != nil {
			result.fail("server.host", config.Host, err.Error(),
				"Use 'localhost' for local development",
				"Use '0.0.0.0' to bind to all interfaces",
			)
		}
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			result.warn("server.allowed_origins", origin, "wildcard origin accepts any site",
				"List the preview hosts explicitly")
		}
	}
}

func validateBehaviorsDetails(config *Config, result *ValidationResult) {
	known := make([]string, 0, len(behavior.BuiltinMarkers))
	for _, m := range behavior.BuiltinMarkers {
		known = append(known, string(m))
	}
	for _, field := range []struct {
		name    string
		markers []string
	}{
		{"behaviors.enabled", config.Behaviors.Enabled},
		{"behaviors.disabled", config.Behaviors.Disabled},
	} {
		for _, m := range field.markers {
			if !contains(known, m) {
				result.warn(field.name, m, fmt.Sprintf("unknown marker '%s'", m),
					"Known markers: "+strings.Join(known, ", "))
			}
		}
	}
	for _, m := range config.Behaviors.Enabled {
		if contains(config.Behaviors.Disabled, m) {
			result.warn("behaviors", m, fmt.Sprintf("marker '%s' is both enabled and disabled; disabled wins", m))
		}
	}

	if config.DataTable.PageSize <= 0 {
		result.fail("datatable.page_size", config.DataTable.PageSize, "page size must be positive",
			fmt.Sprintf("The default is %d", DefaultPageSize))
	} else if config.DataTable.PageSize > 500 {
		result.warn("datatable.page_size", config.DataTable.PageSize, "very large pages defeat pagination")
	}

	if config.Carousel.Interval <= 0 {
		result.fail("carousel.interval", config.Carousel.Interval, "interval must be positive",
			"Use a duration such as 5s")
	} else if config.Carousel.Interval < time.Second {
		result.warn("carousel.interval", config.Carousel.Interval, "autoplay faster than one second is hard to follow")
	}

	if config.Calendar.Columns <= 0 {
		result.fail("calendar.columns", config.Calendar.Columns, "columns must be positive", "Use 7 for a week grid")
	}
	if config.Calendar.PageRows <= 0 {
		result.fail("calendar.page_rows", config.Calendar.PageRows, "page_rows must be positive")
	}

	if _, err := dom.ParseRootMargin(config.TOC.RootMargin); err != nil {
		result.fail("toc.root_margin", config.TOC.RootMargin, err.Error(),
			"Use one to four px or % values, e.g. '"+DefaultRootMargin+"'")
	}
}

func validateWatchDetails(config *WatchConfig, result *ValidationResult) {
	for _, path := range config.Paths {
		if err := validatePath(path); err != nil {
			result.fail("watch.paths", path, err.Error())
		}
	}
	for _, pattern := range config.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			result.fail("watch.patterns", pattern, "invalid glob pattern",
				"Patterns use doublestar syntax, e.g. **/*.html")
		}
	}
	for _, pattern := range config.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			result.fail("watch.ignore", pattern, "invalid glob pattern")
		}
	}
	if config.Debounce < 0 {
		result.fail("watch.debounce", config.Debounce, "debounce must not be negative")
	} else if config.Debounce > 5*time.Second {
		result.warn("watch.debounce", config.Debounce, "long debounce delays scenario reruns")
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
