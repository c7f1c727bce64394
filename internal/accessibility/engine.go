package accessibility

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
)

// Rule is one audit check.
type Rule struct {
	ID          string
	Description string
	Impact      ViolationImpact
	Criteria    WCAGCriteria
	Check       func(doc *dom.Document) []Finding
}

// Finding is a rule failure before it is turned into a Violation.
type Finding struct {
	Element  *dom.Element
	Message  string
	Severity ViolationSeverity
}

// rovingGroups maps an attached root to the items sharing one tab stop.
var rovingGroups = []struct {
	root  string
	items string
}{
	{"[data-calendar-attached]", "[data-calendar-cell]:not([data-disabled])"},
	{"[data-tree-attached]", "[data-tree-item]"},
}

// Engine runs rules over a document.
type Engine struct {
	rules  []Rule
	logger logging.Logger
}

// NewEngine returns an engine with the default rules.
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Engine{rules: DefaultRules(), logger: logger.WithComponent("accessibility")}
}

// Rules returns the rules in evaluation order.
func (e *Engine) Rules() []Rule { return e.rules }

// Audit evaluates every rule against doc. Like every document access it
// must run on the document's loop goroutine.
func (e *Engine) Audit(ctx context.Context, doc *dom.Document) *Report {
	report := &Report{Violations: []Violation{}}
	passed := 0
	for _, rule := range e.rules {
		findings := rule.Check(doc)
		if len(findings) == 0 {
			passed++
			continue
		}
		for _, f := range findings {
			report.Violations = append(report.Violations, Violation{
				Rule:     rule.ID,
				Severity: f.Severity,
				Impact:   rule.Impact,
				Criteria: rule.Criteria,
				Selector: describe(f.Element),
				Message:  f.Message,
			})
		}
	}
	report.Summary = summarize(report.Violations, passed, len(e.rules))
	e.logger.Debug(ctx, "audit finished",
		"rules", len(e.rules),
		"violations", len(report.Violations),
		"errors", report.Summary.Errors,
	)
	return report
}

func summarize(violations []Violation, passed, total int) Summary {
	s := Summary{TotalRules: total, PassedRules: passed, TotalViolations: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		}
	}
	if total > 0 {
		s.Score = float64(passed) / float64(total) * 100
	}
	return s
}

// DefaultRules returns the built-in checks.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "roving-tabindex",
			Description: "A composite widget exposes exactly one tab stop",
			Impact:      ImpactSerious,
			Criteria:    Criteria2_1_1,
			Check:       checkRovingTabindex,
		},
		{
			ID:          "button-name",
			Description: "Buttons must have accessible names",
			Impact:      ImpactCritical,
			Criteria:    Criteria4_1_2,
			Check:       checkButtonName,
		},
		{
			ID:          "control-label",
			Description: "Form controls must have labels",
			Impact:      ImpactCritical,
			Criteria:    Criteria4_1_2,
			Check:       checkControlLabel,
		},
		{
			ID:          "expanded-state",
			Description: "Expanded state must be exposed through aria-expanded",
			Impact:      ImpactSerious,
			Criteria:    Criteria4_1_2,
			Check:       checkExpandedState,
		},
		{
			ID:          "activedescendant-target",
			Description: "aria-activedescendant must reference an existing element",
			Impact:      ImpactSerious,
			Criteria:    Criteria4_1_2,
			Check:       checkActiveDescendant,
		},
		{
			ID:          "duplicate-id",
			Description: "IDs must be unique",
			Impact:      ImpactSerious,
			Criteria:    Criteria4_1_1,
			Check:       checkDuplicateID,
		},
		{
			ID:          "image-alt",
			Description: "Images must have alternative text",
			Impact:      ImpactCritical,
			Criteria:    Criteria1_1_1,
			Check:       checkImageAlt,
		},
	}
}

func checkRovingTabindex(doc *dom.Document) []Finding {
	var out []Finding
	for _, g := range rovingGroups {
		for _, root := range doc.QuerySelectorAll(g.root) {
			items := root.QuerySelectorAll(g.items)
			if len(items) == 0 {
				continue
			}
			stops := 0
			for _, item := range items {
				if item.GetAttribute("tabindex") == "0" {
					stops++
				}
			}
			switch {
			case stops == 0:
				out = append(out, Finding{root, "widget has no tab stop", SeverityWarning})
			case stops > 1:
				out = append(out, Finding{root, fmt.Sprintf("widget has %d tab stops", stops), SeverityError})
			}
		}
	}
	return out
}

func checkButtonName(doc *dom.Document) []Finding {
	var out []Finding
	for _, btn := range doc.QuerySelectorAll("button, [role=button]") {
		if !hasAccessibleName(btn) {
			out = append(out, Finding{btn, "button missing accessible name", SeverityError})
		}
	}
	return out
}

func checkControlLabel(doc *dom.Document) []Finding {
	var out []Finding
	for _, el := range doc.QuerySelectorAll("input:not([type=hidden]):not([type=button]):not([type=submit]), select, textarea") {
		if hasLabel(doc, el) {
			continue
		}
		if el.GetAttribute("placeholder") != "" {
			out = append(out, Finding{el, "control is labelled only by its placeholder", SeverityWarning})
			continue
		}
		out = append(out, Finding{el, "form control missing associated label", SeverityError})
	}
	return out
}

func checkExpandedState(doc *dom.Document) []Finding {
	var out []Finding
	for _, el := range doc.QuerySelectorAll("[data-expanded]") {
		want := el.GetAttribute("data-expanded")
		if got := el.GetAttribute("aria-expanded"); got != want {
			out = append(out, Finding{el, fmt.Sprintf("aria-expanded is %q but data-expanded is %q", got, want), SeverityError})
		}
	}
	return out
}

func checkActiveDescendant(doc *dom.Document) []Finding {
	var out []Finding
	for _, el := range doc.QuerySelectorAll("[aria-activedescendant]") {
		id := el.GetAttribute("aria-activedescendant")
		if id == "" {
			continue
		}
		target := doc.GetElementByID(id)
		if target == nil {
			out = append(out, Finding{el, fmt.Sprintf("aria-activedescendant references missing id %q", id), SeverityError})
			continue
		}
		if target.Hidden() {
			out = append(out, Finding{el, fmt.Sprintf("aria-activedescendant references hidden element %q", id), SeverityWarning})
		}
	}
	return out
}

func checkDuplicateID(doc *dom.Document) []Finding {
	seen := make(map[string]bool)
	var out []Finding
	for _, el := range doc.QuerySelectorAll("[id]") {
		id := el.ID()
		if id == "" {
			continue
		}
		if seen[id] {
			out = append(out, Finding{el, fmt.Sprintf("duplicate id %q", id), SeverityError})
		}
		seen[id] = true
	}
	return out
}

func checkImageAlt(doc *dom.Document) []Finding {
	var out []Finding
	for _, img := range doc.QuerySelectorAll("img:not([alt])") {
		out = append(out, Finding{img, "image missing alt attribute", SeverityError})
	}
	return out
}

func hasAccessibleName(el *dom.Element) bool {
	if strings.TrimSpace(el.TextContent()) != "" {
		return true
	}
	return el.GetAttribute("aria-label") != "" || el.GetAttribute("aria-labelledby") != "" || el.GetAttribute("title") != ""
}

func hasLabel(doc *dom.Document, el *dom.Element) bool {
	if el.GetAttribute("aria-label") != "" || el.GetAttribute("aria-labelledby") != "" {
		return true
	}
	if el.Closest("label") != nil {
		return true
	}
	if id := el.ID(); id != "" {
		for _, label := range doc.QuerySelectorAll("label[for]") {
			if label.GetAttribute("for") == id {
				return true
			}
		}
	}
	return false
}

// describe renders a short selector locating el.
func describe(el *dom.Element) string {
	if el == nil {
		return ""
	}
	s := el.TagName()
	if id := el.ID(); id != "" {
		return s + "#" + id
	}
	for _, a := range el.Node().Attr {
		if strings.HasPrefix(a.Key, "data-") {
			s += "[" + a.Key + "]"
			break
		}
	}
	if parent := el.Parent(); parent != nil {
		if anc := parent.Closest("[id]"); anc != nil {
			s = "#" + anc.ID() + " " + s
		}
	}
	return s
}
