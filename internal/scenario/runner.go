package scenario

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/metrics"
	"github.com/conneroisu/canon/internal/registry"
)

// Event is a custom event observed at the document during a run.
type Event struct {
	Type   string         `json:"type" yaml:"type"`
	Target string         `json:"target,omitempty" yaml:"target,omitempty"`
	Detail map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Failure is an unmet expectation or a step that could not run.
type Failure struct {
	Step    int    `json:"step" yaml:"step"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"message" yaml:"message"`
}

func (f Failure) String() string {
	return fmt.Sprintf("step %d (%s): %s", f.Step, f.Kind, f.Message)
}

// Result is the outcome of one run.
type Result struct {
	Name     string    `json:"name" yaml:"name"`
	Attached int       `json:"attached" yaml:"attached"`
	Events   []Event   `json:"events" yaml:"events"`
	Failures []Failure `json:"failures" yaml:"failures"`
	Markup   string    `json:"-" yaml:"-"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Runner executes scenarios against a fixed set of behaviors.
type Runner struct {
	behaviors []behavior.Behavior
	logger    logging.Logger
	recorder  metrics.Recorder
}

// NewRunner creates a runner. A nil logger discards output and a nil
// recorder disables metrics.
func NewRunner(behaviors []behavior.Behavior, logger logging.Logger, recorder metrics.Recorder) *Runner {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Runner{behaviors: behaviors, logger: logger.WithComponent("scenario"), recorder: recorder}
}

// Run parses the scenario markup, attaches every behavior, and plays the
// steps in order. Failed expectations are collected in the result; the
// error is reserved for markup and registry failures.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	doc, err := dom.ParseString(sc.Markup)
	if err != nil {
		return nil, err
	}

	reg := registry.New(r.logger, r.recorder)
	for _, b := range r.behaviors {
		if err := reg.Register(b); err != nil {
			return nil, err
		}
	}

	result := &Result{Name: sc.Name, Events: []Event{}, Failures: []Failure{}}
	for _, name := range behavior.Events {
		doc.AddEventListener(name, func(ev *dom.Event) {
			e := Event{Type: ev.Type, Detail: ev.Detail}
			if ev.Target != nil {
				e.Target = ev.Target.ID()
			}
			result.Events = append(result.Events, e)
		})
	}

	if err := reg.Start(ctx, doc); err != nil {
		if reg.Document() == nil {
			return nil, err
		}
		r.logger.Warn(ctx, err, "some behaviors failed to attach", "scenario", sc.Name)
	}
	defer reg.Dispose()
	doc.Loop().Flush()
	result.Attached = reg.ActiveRoots()

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		kind := step.Kind()
		if msg := r.play(doc, step, result); msg != "" {
			result.Failures = append(result.Failures, Failure{Step: i + 1, Kind: kind, Message: msg})
			r.logger.Debug(ctx, "scenario step failed", "scenario", sc.Name, "step", i+1, "kind", kind, "reason", msg)
		}
		doc.Loop().Flush()
	}

	result.Markup = doc.String()
	r.logger.Info(ctx, "scenario finished",
		"scenario", sc.Name,
		"steps", len(sc.Steps),
		"events", len(result.Events),
		"failures", len(result.Failures),
	)
	return result, nil
}

// play runs one step and returns a failure message, or "" on success.
func (r *Runner) play(doc *dom.Document, step Step, result *Result) string {
	target := func(selector string) (*dom.Element, string) {
		el := doc.QuerySelector(selector)
		if el == nil {
			return nil, fmt.Sprintf("no element matches %q", selector)
		}
		return el, ""
	}
	dispatch := func(selector, eventType string) string {
		el, msg := target(selector)
		if el != nil {
			el.DispatchEvent(dom.NewMouseEvent(eventType))
		}
		return msg
	}

	switch {
	case step.Click != "":
		el, msg := target(step.Click)
		if el != nil {
			el.Click()
		}
		return msg
	case step.Change != "":
		el, msg := target(step.Change)
		if el != nil {
			el.DispatchEvent(dom.NewEvent("change", dom.EventInit{Bubbles: true}))
		}
		return msg
	case step.Focus != "":
		el, msg := target(step.Focus)
		if el != nil {
			el.Focus()
		}
		return msg
	case step.DragStart != "":
		return dispatch(step.DragStart, "dragstart")
	case step.DragOver != "":
		return dispatch(step.DragOver, "dragover")
	case step.Drop != "":
		return dispatch(step.Drop, "drop")
	case step.DragEnd != "":
		return dispatch(step.DragEnd, "dragend")
	case step.Remove != "":
		el, msg := target(step.Remove)
		if el != nil {
			el.Remove()
		}
		return msg
	case step.KeyDown != nil:
		k := step.KeyDown
		el, msg := target(k.Target)
		if el != nil {
			el.Focus()
			el.DispatchEvent(dom.NewEvent("keydown", dom.EventInit{
				Bubbles:    true,
				Cancelable: true,
				Key:        k.Key,
				CtrlKey:    k.Ctrl,
				MetaKey:    k.Meta,
				ShiftKey:   k.Shift,
			}))
		}
		return msg
	case step.Input != nil:
		el, msg := target(step.Input.Target)
		if el != nil {
			el.Input(step.Input.Value)
		}
		return msg
	case step.Intersect != nil:
		el, msg := target(step.Intersect.Target)
		if el != nil {
			doc.Intersect(el, step.Intersect.Intersecting)
		}
		return msg
	case step.Append != nil:
		parent, msg := target(step.Append.Target)
		if parent == nil {
			return msg
		}
		els, err := doc.ParseFragment(parent, step.Append.Markup)
		if err != nil {
			return err.Error()
		}
		for _, el := range els {
			parent.AppendChild(el)
		}
		return ""
	case step.Scroll != nil:
		doc.ScrollTo(*step.Scroll)
		return ""
	case step.Advance != 0:
		doc.Loop().Advance(step.Advance)
		return ""
	case step.Expect != nil:
		return check(doc, step.Expect, result.Events)
	}
	return "step holds no operation"
}

func check(doc *dom.Document, e *Expectation, events []Event) string {
	if e.Event != "" {
		n := 0
		for _, ev := range events {
			if ev.Type == e.Event && detailMatches(ev.Detail, e.Detail) {
				n++
			}
		}
		if e.Count != nil {
			if n != *e.Count {
				return fmt.Sprintf("expected %d %s events, saw %d", *e.Count, e.Event, n)
			}
			return ""
		}
		if n == 0 {
			return fmt.Sprintf("expected a %s event, saw none", e.Event)
		}
		return ""
	}

	els := doc.QuerySelectorAll(e.Selector)
	if e.Count != nil && len(els) != *e.Count {
		return fmt.Sprintf("expected %d elements matching %q, found %d", *e.Count, e.Selector, len(els))
	}
	needsElement := e.Attr != "" || e.Text != nil || e.Hidden != nil || e.Focused
	if !needsElement {
		if e.Count == nil && len(els) == 0 {
			return fmt.Sprintf("no element matches %q", e.Selector)
		}
		return ""
	}
	if len(els) == 0 {
		return fmt.Sprintf("no element matches %q", e.Selector)
	}
	el := els[0]

	var problems []string
	if e.Attr != "" {
		value, ok := el.Attr(e.Attr)
		if e.Present != nil && ok != *e.Present {
			problems = append(problems, fmt.Sprintf("%s present=%t, want %t", e.Attr, ok, *e.Present))
		}
		if e.Present == nil && e.Equals == nil && !ok {
			problems = append(problems, fmt.Sprintf("%s is missing", e.Attr))
		}
		if e.Equals != nil && value != *e.Equals {
			problems = append(problems, fmt.Sprintf("%s=%q, want %q", e.Attr, value, *e.Equals))
		}
	}
	if e.Text != nil {
		if got := strings.TrimSpace(el.TextContent()); got != *e.Text {
			problems = append(problems, fmt.Sprintf("text=%q, want %q", got, *e.Text))
		}
	}
	if e.Hidden != nil && el.Hidden() != *e.Hidden {
		problems = append(problems, fmt.Sprintf("hidden=%t, want %t", el.Hidden(), *e.Hidden))
	}
	if e.Focused && doc.ActiveElement() != el {
		problems = append(problems, "element is not focused")
	}
	return strings.Join(problems, "; ")
}

// detailMatches reports whether every key in want appears in got with an
// equal value. Numbers compare by their printed form so YAML ints match Go
// ints of any width.
func detailMatches(got, want map[string]any) bool {
	for k, w := range want {
		g, ok := got[k]
		if !ok {
			return false
		}
		if reflect.DeepEqual(g, w) {
			continue
		}
		if fmt.Sprint(g) != fmt.Sprint(w) {
			return false
		}
	}
	return true
}
