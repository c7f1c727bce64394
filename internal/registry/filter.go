package registry

import "github.com/conneroisu/canon/internal/behavior"

// Filter keeps the behaviors allowed by enabled and disabled marker lists.
// An empty enabled list allows everything; disabled always wins.
func Filter(all []behavior.Behavior, enabled, disabled []string) []behavior.Behavior {
	allow := make(map[string]bool, len(enabled))
	for _, m := range enabled {
		allow[m] = true
	}
	deny := make(map[string]bool, len(disabled))
	for _, m := range disabled {
		deny[m] = true
	}

	out := make([]behavior.Behavior, 0, len(all))
	for _, b := range all {
		m := string(b.Marker())
		if deny[m] {
			continue
		}
		if len(allow) > 0 && !allow[m] {
			continue
		}
		out = append(out, b)
	}
	return out
}
