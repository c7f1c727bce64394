package keynav

import "github.com/conneroisu/canon/internal/dom"

// Roving gives items[index] tabindex="0" and every other item "-1". An out
// of range index leaves every item at "-1".
func Roving(items []*dom.Element, index int) {
	for i, el := range items {
		if i == index {
			el.SetAttribute("tabindex", "0")
		} else {
			el.SetAttribute("tabindex", "-1")
		}
	}
}

// FocusAt applies Roving and focuses items[index].
func FocusAt(items []*dom.Element, index int) {
	if index < 0 || index >= len(items) {
		return
	}
	Roving(items, index)
	items[index].Focus()
}

// Current returns the index of the item holding tabindex="0", or -1.
func Current(items []*dom.Element) int {
	for i, el := range items {
		if el.GetAttribute("tabindex") == "0" {
			return i
		}
	}
	return -1
}

// IndexOf returns the position of target in items, or -1.
func IndexOf(items []*dom.Element, target *dom.Element) int {
	for i, el := range items {
		if el == target {
			return i
		}
	}
	return -1
}

// EnsureOne gives the first item tabindex="0" when no item holds it.
func EnsureOne(items []*dom.Element) {
	if len(items) > 0 && Current(items) < 0 {
		items[0].SetAttribute("tabindex", "0")
	}
}

// Zeroes counts items holding tabindex="0".
func Zeroes(items []*dom.Element) int {
	n := 0
	for _, el := range items {
		if el.GetAttribute("tabindex") == "0" {
			n++
		}
	}
	return n
}
