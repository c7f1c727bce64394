//go:build property

package watcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestDebouncerProperties checks that a burst of events flushes as one
// batch with one entry per distinct path.
func TestDebouncerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("one entry per path, sorted", prop.ForAll(
		func(paths []int) bool {
			if len(paths) == 0 {
				return true
			}
			d := &Debouncer{
				delay:  5 * time.Millisecond,
				events: make(chan ChangeEvent, 1),
				output: make(chan []ChangeEvent, 1),
			}
			distinct := map[string]bool{}
			for _, p := range paths {
				name := fmt.Sprintf("f%02d.html", p)
				distinct[name] = true
				d.addEvent(ChangeEvent{Type: EventTypeModified, Path: name})
			}

			select {
			case batch := <-d.output:
				if len(batch) != len(distinct) {
					return false
				}
				for i := 1; i < len(batch); i++ {
					if batch[i-1].Path >= batch[i].Path {
						return false
					}
				}
				return true
			case <-time.After(time.Second):
				return false
			}
		},
		gen.SliceOfN(20, gen.IntRange(0, 30)),
	))

	properties.TestingRun(t)
}
