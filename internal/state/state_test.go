package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/dom"
)

func element(t *testing.T, attrs string) *dom.Element {
	t.Helper()
	doc, err := dom.ParseString(`<div id="x" ` + attrs + `></div>`)
	require.NoError(t, err)
	return doc.GetElementByID("x")
}

func TestInt(t *testing.T) {
	el := element(t, `data-page-size="25" data-bad="abc" data-neg="-3" data-space=" 7 "`)
	assert.Equal(t, 25, Int(el, "data-page-size", 10))
	assert.Equal(t, 10, Int(el, "data-bad", 10))
	assert.Equal(t, 10, Int(el, "data-missing", 10))
	assert.Equal(t, 7, Int(el, "data-space", 0))
	assert.Equal(t, -3, Int(el, "data-neg", 0))
	assert.Equal(t, 10, PositiveInt(el, "data-neg", 10))
	assert.Equal(t, 4, Int(nil, "data-page-size", 4))

	SetInt(el, "data-current-page", 3)
	assert.Equal(t, "3", el.GetAttribute("data-current-page"))
}

func TestDuration(t *testing.T) {
	el := element(t, `data-interval="1500" data-zero="0"`)
	assert.Equal(t, 1500*time.Millisecond, Duration(el, "data-interval", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration(el, "data-zero", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration(el, "data-missing", 5*time.Second))
}

func TestBoolAndFlag(t *testing.T) {
	el := element(t, `data-expanded="true" data-selected="nope" data-loop`)
	assert.True(t, Bool(el, "data-expanded", false))
	assert.True(t, Bool(el, "data-selected", true))
	assert.False(t, Bool(el, "data-selected", false))

	SetBool(el, "data-expanded", false)
	assert.Equal(t, "false", el.GetAttribute("data-expanded"))

	assert.True(t, Flag(el, "data-loop"))
	SetFlag(el, "data-loop", false)
	assert.False(t, Flag(el, "data-loop"))
	assert.False(t, Flag(nil, "data-loop"))
}

func TestString(t *testing.T) {
	el := element(t, `data-toc-mode="nested" data-empty=""`)
	assert.Equal(t, "nested", String(el, "data-toc-mode", "simple"))
	assert.Equal(t, "simple", String(el, "data-empty", "simple"))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 3))
	assert.Equal(t, 3, Clamp(9, 1, 3))
	assert.Equal(t, 2, Clamp(2, 1, 3))
	assert.Equal(t, 1, Clamp(5, 1, 0))
}
