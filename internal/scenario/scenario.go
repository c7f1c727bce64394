// Package scenario runs scripted interactions against markup with the
// behavior registry attached. Scenarios are YAML documents holding markup,
// a list of steps, and expectations checked between steps.
package scenario

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// DefaultPattern finds scenario files.
const DefaultPattern = "**/*.scenario.{yaml,yml}"

// Scenario is one scripted run.
type Scenario struct {
	Name       string `yaml:"name"`
	Markup     string `yaml:"markup"`
	MarkupFile string `yaml:"markup_file"`
	Steps      []Step `yaml:"steps"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Step holds exactly one action or expectation.
type Step struct {
	Click     string         `yaml:"click,omitempty"`
	Change    string         `yaml:"change,omitempty"`
	Focus     string         `yaml:"focus,omitempty"`
	DragStart string         `yaml:"dragstart,omitempty"`
	DragOver  string         `yaml:"dragover,omitempty"`
	Drop      string         `yaml:"drop,omitempty"`
	DragEnd   string         `yaml:"dragend,omitempty"`
	Remove    string         `yaml:"remove,omitempty"`
	KeyDown   *KeyStep       `yaml:"keydown,omitempty"`
	Input     *InputStep     `yaml:"input,omitempty"`
	Intersect *IntersectStep `yaml:"intersect,omitempty"`
	Append    *AppendStep    `yaml:"append,omitempty"`
	Scroll    *float64       `yaml:"scroll,omitempty"`
	Advance   time.Duration  `yaml:"advance,omitempty"`
	Expect    *Expectation   `yaml:"expect,omitempty"`
}

type KeyStep struct {
	Target string `yaml:"target"`
	Key    string `yaml:"key"`
	Ctrl   bool   `yaml:"ctrl"`
	Meta   bool   `yaml:"meta"`
	Shift  bool   `yaml:"shift"`
}

type InputStep struct {
	Target string `yaml:"target"`
	Value  string `yaml:"value"`
}

type IntersectStep struct {
	Target       string `yaml:"target"`
	Intersecting bool   `yaml:"intersecting"`
}

type AppendStep struct {
	Target string `yaml:"target"`
	Markup string `yaml:"markup"`
}

// Expectation checks the document or the events emitted so far. With Event
// set it counts matching events (at least one when Count is nil);
// otherwise it inspects the elements matching Selector.
type Expectation struct {
	Selector string         `yaml:"selector,omitempty"`
	Attr     string         `yaml:"attr,omitempty"`
	Equals   *string        `yaml:"equals,omitempty"`
	Present  *bool          `yaml:"present,omitempty"`
	Text     *string        `yaml:"text,omitempty"`
	Hidden   *bool          `yaml:"hidden,omitempty"`
	Focused  bool           `yaml:"focused,omitempty"`
	Count    *int           `yaml:"count,omitempty"`
	Event    string         `yaml:"event,omitempty"`
	Detail   map[string]any `yaml:"detail,omitempty"`
}

// Kind names the single operation a step performs.
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(s.Click != "", "click")
	add(s.Change != "", "change")
	add(s.Focus != "", "focus")
	add(s.DragStart != "", "dragstart")
	add(s.DragOver != "", "dragover")
	add(s.Drop != "", "drop")
	add(s.DragEnd != "", "dragend")
	add(s.Remove != "", "remove")
	add(s.KeyDown != nil, "keydown")
	add(s.Input != nil, "input")
	add(s.Intersect != nil, "intersect")
	add(s.Append != nil, "append")
	add(s.Scroll != nil, "scroll")
	add(s.Advance != 0, "advance")
	add(s.Expect != nil, "expect")
	return out
}

// Validate checks that the scenario has markup and that every step holds
// exactly one operation.
func (sc *Scenario) Validate() error {
	if sc.Markup == "" {
		return canonerrors.NewValidationError(canonerrors.ErrCodeScenario, "scenario has no markup").
			WithContext("scenario", sc.Name)
	}
	for i, step := range sc.Steps {
		kinds := step.kinds()
		if len(kinds) != 1 {
			return canonerrors.NewValidationError(canonerrors.ErrCodeScenario,
				fmt.Sprintf("step %d must hold exactly one operation, found %v", i+1, kinds)).
				WithContext("scenario", sc.Name)
		}
		if e := step.Expect; e != nil && e.Selector == "" && e.Event == "" {
			return canonerrors.NewValidationError(canonerrors.ErrCodeScenario,
				fmt.Sprintf("step %d: expect needs a selector or an event", i+1)).
				WithContext("scenario", sc.Name)
		}
	}
	return nil
}

// Parse decodes a scenario. A relative markup_file resolves against dir.
func Parse(data []byte, dir string) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeScenario, "decoding scenario", err)
	}
	if sc.MarkupFile != "" {
		path := sc.MarkupFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, canonerrors.NewIOError(canonerrors.ErrCodeScenario, "reading markup file", err).
				WithContext("path", path)
		}
		sc.Markup = string(raw)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load reads and parses the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, canonerrors.NewIOError(canonerrors.ErrCodeScenario, "reading scenario", err).
			WithContext("path", path)
	}
	sc, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	sc.Path = path
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return sc, nil
}

// Discover returns the files under fsys matching pattern, sorted.
func Discover(fsys fs.FS, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeScenario, "bad scenario pattern", err).
			WithContext("pattern", pattern)
	}
	sort.Strings(matches)
	return matches, nil
}
