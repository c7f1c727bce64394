// Package scaffolding lays out a starter project: a .canon.yml, one page
// per chosen widget, and a scenario exercising each page.
package scaffolding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	canonerrors "github.com/conneroisu/canon/internal/errors"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/markup"
)

const configTemplate = `# canon configuration for {{.ProjectName}}
log:
  level: info
  format: text
server:
  host: localhost
  port: 7331
behaviors:
  enabled:
{{- range .Markers}}
    - {{.}}
{{- end}}
watch:
  paths: ["."]
  patterns: ["**/*.html", "**/*.scenario.yaml"]
  ignore: [".git/**", "node_modules/**"]
`

// Options selects what Generate writes.
type Options struct {
	Dir         string
	ProjectName string
	// Widgets names the templates to generate. Empty selects all.
	Widgets []string
	// Force overwrites existing files.
	Force bool
}

// Generator writes starter projects.
type Generator struct {
	templates map[string]Template
	logger    logging.Logger
}

// NewGenerator returns a generator with the built-in templates.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewTestLogger()
	}
	return &Generator{templates: BuiltinTemplates(), logger: logger.WithComponent("scaffolding")}
}

// Names returns the template names, sorted.
func (g *Generator) Names() []string {
	names := make([]string, 0, len(g.templates))
	for name := range g.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template returns the named template.
func (g *Generator) Template(name string) (Template, bool) {
	t, ok := g.templates[name]
	return t, ok
}

// AddTemplate registers or replaces a template.
func (g *Generator) AddTemplate(t Template) { g.templates[t.Name] = t }

// Generate writes the project and returns the written paths relative to
// opts.Dir. Nothing is written when a target exists and Force is unset.
func (g *Generator) Generate(ctx context.Context, opts Options) ([]string, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.ProjectName == "" {
		abs, err := filepath.Abs(opts.Dir)
		if err != nil {
			return nil, err
		}
		opts.ProjectName = filepath.Base(abs)
	}
	names := opts.Widgets
	if len(names) == 0 {
		names = g.Names()
	}

	files := map[string][]byte{}
	var order []string
	add := func(rel string, data []byte) {
		files[rel] = data
		order = append(order, rel)
	}

	var markers []string
	for _, name := range names {
		t, ok := g.templates[name]
		if !ok {
			return nil, canonerrors.NewValidationError(canonerrors.ErrCodeBadInput,
				fmt.Sprintf("unknown widget %q, want one of %s", name, strings.Join(g.Names(), ", ")))
		}
		markers = append(markers, string(t.Marker))

		page, err := markup.Render(ctx, markup.Page(t.Name, t.Page()))
		if err != nil {
			return nil, fmt.Errorf("render %s page: %w", t.Name, err)
		}
		pageRel := filepath.Join("pages", t.Name+".html")
		add(pageRel, []byte(page+"\n"))

		scenario, err := execute(t.Scenario, TemplateContext{
			Name:        t.Name,
			ProjectName: opts.ProjectName,
			PageFile:    "../pages/" + t.Name + ".html",
			Date:        time.Now().Format(time.DateOnly),
		})
		if err != nil {
			return nil, fmt.Errorf("render %s scenario: %w", t.Name, err)
		}
		add(filepath.Join("scenarios", t.Name+".scenario.yaml"), scenario)
	}

	config, err := execute(configTemplate, struct {
		ProjectName string
		Markers     []string
	}{opts.ProjectName, markers})
	if err != nil {
		return nil, fmt.Errorf("render config: %w", err)
	}
	add(".canon.yml", config)

	if !opts.Force {
		for _, rel := range order {
			if _, err := os.Stat(filepath.Join(opts.Dir, rel)); err == nil {
				return nil, canonerrors.NewValidationError(canonerrors.ErrCodeBadInput,
					fmt.Sprintf("%s already exists, use --force to overwrite", rel))
			}
		}
	}

	for _, rel := range order {
		path := filepath.Join(opts.Dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, canonerrors.NewIOError(canonerrors.ErrCodeStorage, "creating directory", err).
				WithContext("path", filepath.Dir(path))
		}
		if err := os.WriteFile(path, files[rel], 0o644); err != nil {
			return nil, canonerrors.NewIOError(canonerrors.ErrCodeStorage, "writing file", err).
				WithContext("path", path)
		}
	}
	g.logger.Info(ctx, "project generated", "dir", opts.Dir, "widgets", len(names), "files", len(order))
	return order, nil
}

func execute(text string, data any) ([]byte, error) {
	tmpl, err := template.New("scaffold").Parse(text)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}
