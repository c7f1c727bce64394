// Package accessibility audits attached markup for the keyboard and ARIA
// contracts the behaviors promise: one roving tab stop per widget, accessible
// names on controls, expanded state mirrored into ARIA, and
// aria-activedescendant pointing at a real element.
package accessibility

// WCAGCriteria is a WCAG success criterion number.
type WCAGCriteria string

const (
	Criteria1_1_1 WCAGCriteria = "1.1.1" // Non-text Content
	Criteria2_1_1 WCAGCriteria = "2.1.1" // Keyboard
	Criteria2_4_3 WCAGCriteria = "2.4.3" // Focus Order
	Criteria4_1_1 WCAGCriteria = "4.1.1" // Parsing
	Criteria4_1_2 WCAGCriteria = "4.1.2" // Name, Role, Value
)

// ViolationSeverity represents the severity level of an accessibility violation.
type ViolationSeverity string

const (
	SeverityError   ViolationSeverity = "error"
	SeverityWarning ViolationSeverity = "warning"
)

// ViolationImpact represents the potential impact of an accessibility violation.
type ViolationImpact string

const (
	ImpactCritical ViolationImpact = "critical"
	ImpactSerious  ViolationImpact = "serious"
	ImpactModerate ViolationImpact = "moderate"
)

// Violation is one failed check on one element.
type Violation struct {
	Rule     string            `json:"rule" yaml:"rule"`
	Severity ViolationSeverity `json:"severity" yaml:"severity"`
	Impact   ViolationImpact   `json:"impact" yaml:"impact"`
	Criteria WCAGCriteria      `json:"criteria" yaml:"criteria"`
	Selector string            `json:"selector" yaml:"selector"`
	Message  string            `json:"message" yaml:"message"`
}

// Summary counts violations of one report.
type Summary struct {
	TotalRules      int     `json:"total_rules" yaml:"total_rules"`
	PassedRules     int     `json:"passed_rules" yaml:"passed_rules"`
	TotalViolations int     `json:"total_violations" yaml:"total_violations"`
	Errors          int     `json:"errors" yaml:"errors"`
	Warnings        int     `json:"warnings" yaml:"warnings"`
	Score           float64 `json:"score" yaml:"score"`
}

// Report is the outcome of one audit.
type Report struct {
	Violations []Violation `json:"violations" yaml:"violations"`
	Summary    Summary     `json:"summary" yaml:"summary"`
}

// Passed reports an audit without errors. Warnings do not fail it.
func (r *Report) Passed() bool { return r.Summary.Errors == 0 }
