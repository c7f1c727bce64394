//go:build property

package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestValidationAgreement checks that the quick validator and the detailed
// one agree on every generated configuration.
func TestValidationAgreement(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validateConfig and details agree", prop.ForAll(
		func(port, pageSize, intervalMs, columns int, margin string) bool {
			cfg := Default()
			cfg.Server.Port = port
			cfg.DataTable.PageSize = pageSize
			cfg.Carousel.Interval = time.Duration(intervalMs) * time.Millisecond
			cfg.Calendar.Columns = columns
			cfg.TOC.RootMargin = margin

			quick := validateConfig(cfg) == nil
			detailed := ValidateConfigWithDetails(cfg).Valid
			return quick == detailed
		},
		gen.IntRange(-10, 70000),
		gen.IntRange(-5, 50),
		gen.IntRange(-1000, 10000),
		gen.IntRange(-2, 10),
		gen.OneConstOf("0px", "-20% 0px -70% 0px", "10em", "1px 2px", "", "5%"),
	))

	properties.Property("positive page sizes always validate", prop.ForAll(
		func(pageSize int) bool {
			cfg := Default()
			cfg.DataTable.PageSize = pageSize
			return validateConfig(cfg) == nil
		},
		gen.IntRange(1, 10000),
	))

	properties.TestingRun(t)
}
