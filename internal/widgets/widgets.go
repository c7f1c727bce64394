// Package widgets assembles the built-in behaviors.
package widgets

import (
	"time"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/storage"
	"github.com/conneroisu/canon/internal/widgets/calendar"
	"github.com/conneroisu/canon/internal/widgets/carousel"
	"github.com/conneroisu/canon/internal/widgets/command"
	"github.com/conneroisu/canon/internal/widgets/datatable"
	"github.com/conneroisu/canon/internal/widgets/dragdrop"
	"github.com/conneroisu/canon/internal/widgets/sidebar"
	"github.com/conneroisu/canon/internal/widgets/toc"
	"github.com/conneroisu/canon/internal/widgets/tree"
)

// Options carries the tunables of every built-in behavior. Zero values
// select each behavior's default.
type Options struct {
	PageSize         int
	CarouselInterval time.Duration
	TOCRootMargin    string
	CalendarColumns  int
	CalendarPageRows int
	Store            storage.Store
	Logger           logging.Logger
}

// Builtin returns every built-in behavior in registration order.
func Builtin(opts Options) []behavior.Behavior {
	return []behavior.Behavior{
		calendar.New(calendar.Options{
			Columns:  opts.CalendarColumns,
			PageRows: opts.CalendarPageRows,
			Logger:   opts.Logger,
		}),
		carousel.New(carousel.Options{Interval: opts.CarouselInterval, Logger: opts.Logger}),
		datatable.New(datatable.Options{PageSize: opts.PageSize, Logger: opts.Logger}),
		dragdrop.New(dragdrop.Options{Logger: opts.Logger}),
		tree.New(tree.Options{Logger: opts.Logger}),
		toc.New(toc.Options{RootMargin: opts.TOCRootMargin, Logger: opts.Logger}),
		command.New(command.Options{Logger: opts.Logger}),
		sidebar.New(sidebar.Options{Store: opts.Store, Logger: opts.Logger}),
	}
}
