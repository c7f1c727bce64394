// Package state reads and writes widget state stored in element attributes.
// Parse failures fall back to the caller's default.
package state

import (
	"strconv"
	"strings"
	"time"

	"github.com/conneroisu/canon/internal/dom"
)

// Int parses an integer attribute, returning def when absent or malformed.
func Int(el *dom.Element, name string, def int) int {
	if el == nil {
		return def
	}
	raw, ok := el.Attr(name)
	if !ok {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}

// PositiveInt is Int restricted to values above zero.
func PositiveInt(el *dom.Element, name string, def int) int {
	v := Int(el, name, def)
	if v <= 0 {
		return def
	}
	return v
}

// SetInt writes an integer attribute.
func SetInt(el *dom.Element, name string, v int) {
	el.SetAttribute(name, strconv.Itoa(v))
}

// Duration parses a millisecond attribute such as data-interval.
func Duration(el *dom.Element, name string, def time.Duration) time.Duration {
	ms := Int(el, name, -1)
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Bool reads a "true"/"false" attribute. Any other value yields def.
func Bool(el *dom.Element, name string, def bool) bool {
	if el == nil {
		return def
	}
	switch el.GetAttribute(name) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

// SetBool writes "true" or "false".
func SetBool(el *dom.Element, name string, v bool) {
	el.SetAttribute(name, strconv.FormatBool(v))
}

// Flag reports whether a presence attribute is set.
func Flag(el *dom.Element, name string) bool {
	return el != nil && el.HasAttribute(name)
}

// SetFlag adds or removes a presence attribute.
func SetFlag(el *dom.Element, name string, on bool) {
	el.ToggleAttribute(name, on)
}

// String returns the attribute or def when absent or empty.
func String(el *dom.Element, name, def string) string {
	if el == nil {
		return def
	}
	if v := el.GetAttribute(name); v != "" {
		return v
	}
	return def
}

// Clamp bounds v to [lo, hi]. When hi < lo it returns lo.
func Clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
