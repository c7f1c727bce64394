package scaffolding

import (
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/markup"
)

// Template is one widget starter: a page holding the widget and a scenario
// exercising it.
type Template struct {
	Name        string
	Description string
	Marker      behavior.Marker
	Page        func() templ.Component
	// Scenario is a text/template rendered with a TemplateContext.
	Scenario string
}

// TemplateContext is the data available to scenario templates.
type TemplateContext struct {
	Name        string
	ProjectName string
	PageFile    string
	Date        string
}

// BuiltinTemplates returns the widget starters keyed by name.
func BuiltinTemplates() map[string]Template {
	return map[string]Template{
		"carousel": {
			Name:        "carousel",
			Description: "Slides with prev/next controls and generated indicator dots",
			Marker:      behavior.MarkerCarousel,
			Page: func() templ.Component {
				return markup.Carousel("carousel", []string{"First", "Second", "Third"}, markup.CarouselOptions{})
			},
			Scenario: `name: {{.Name}} advances on next
markup_file: {{.PageFile}}
steps:
  - click: "#carousel [data-carousel-next]"
  - expect: {selector: "#carousel", attr: data-current-index, equals: "1"}
  - expect: {event: "` + behavior.EventCarouselChange + `", detail: {index: 1}}
`,
		},
		"calendar": {
			Name:        "calendar",
			Description: "Month grid with one roving tab stop",
			Marker:      behavior.MarkerCalendar,
			Page: func() templ.Component {
				return markup.Calendar("calendar", 2026, time.January, 10, 11)
			},
			Scenario: `name: {{.Name}} exposes one tab stop
markup_file: {{.PageFile}}
steps:
  - expect: {selector: "#calendar [data-calendar-cell][tabindex='0']", count: 1}
`,
		},
		"datatable": {
			Name:        "datatable",
			Description: "Filterable, sortable, paginated table",
			Marker:      behavior.MarkerDataTable,
			Page: func() templ.Component {
				return markup.DataTable("table",
					[]markup.Column{{ID: "name", Label: "Name", Sortable: true}, {ID: "qty", Label: "Qty", Sortable: true}},
					[][]string{{"apple", "3"}, {"banana", "12"}, {"cherry", "7"}, {"date", "1"}, {"elderberry", "20"}},
					2)
			},
			Scenario: `name: {{.Name}} paginates
markup_file: {{.PageFile}}
steps:
  - expect: {selector: "#table [data-pagination-info]", text: "1 of 3"}
  - click: "#table [data-action='next']"
  - expect: {selector: "#table [data-pagination-info]", text: "2 of 3"}
`,
		},
		"tree": {
			Name:        "tree",
			Description: "Nested items with expand/collapse toggles",
			Marker:      behavior.MarkerTree,
			Page: func() templ.Component {
				return markup.Tree("files", []markup.TreeNode{
					{ID: "src", Label: "src", Children: []markup.TreeNode{{ID: "main", Label: "main.go"}}},
					{ID: "readme", Label: "README.md"},
				})
			},
			Scenario: `name: {{.Name}} expands on toggle
markup_file: {{.PageFile}}
steps:
  - click: "#files [data-tree-toggle]"
  - expect: {selector: "#files [data-item-id='src']", attr: aria-expanded, equals: "true"}
`,
		},
		"command": {
			Name:        "command",
			Description: "Filterable command list driven by its input",
			Marker:      behavior.MarkerCommand,
			Page: func() templ.Component {
				return markup.CommandPicker("commands", []markup.CommandItem{
					{Value: "file.open", Label: "Open File"},
					{Value: "file.save", Label: "Save File"},
				})
			},
			Scenario: `name: {{.Name}} filters items
markup_file: {{.PageFile}}
steps:
  - input: {target: "#commands [data-command-input]", value: save}
  - expect: {selector: "#commands [data-value='file.open']", hidden: true}
  - expect: {selector: "#commands [data-value='file.save']", hidden: false}
`,
		},
	}
}
