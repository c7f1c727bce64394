package dom

import (
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	canonerrors "github.com/conneroisu/canon/internal/errors"
)

// selectorCache holds compiled selectors shared by every document.
var selectorCache = struct {
	sync.RWMutex
	m map[string]cascadia.SelectorGroup
}{m: make(map[string]cascadia.SelectorGroup)}

// Compile parses a CSS selector group, caching the result.
func Compile(selector string) (cascadia.SelectorGroup, error) {
	selectorCache.RLock()
	sel, ok := selectorCache.m[selector]
	selectorCache.RUnlock()
	if ok {
		return sel, nil
	}

	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, canonerrors.NewParseError(canonerrors.ErrCodeBadSelector, "invalid selector "+selector, err)
	}

	selectorCache.Lock()
	selectorCache.m[selector] = sel
	selectorCache.Unlock()
	return sel, nil
}

func (d *Document) querySelectorAll(scope *html.Node, selector string, firstOnly bool) []*Element {
	sel, err := Compile(selector)
	if err != nil {
		return nil
	}
	var out []*Element
	walk(scope, func(n *html.Node) bool {
		if n.Type == html.ElementNode && sel.Match(n) {
			out = append(out, d.wrap(n))
			if firstOnly {
				return false
			}
		}
		return true
	})
	return out
}

func matches(n *html.Node, selector string) bool {
	sel, err := Compile(selector)
	if err != nil {
		return false
	}
	return sel.Match(n)
}
