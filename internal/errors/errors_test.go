package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonError_Error(t *testing.T) {
	err := NewListenerError("click", errors.New("host refused")).WithComponent("carousel")
	assert.Equal(t, "[ERR_LISTENER_FAILED] component:carousel failed to add click listener: host refused", err.Error())
	assert.Equal(t, "click", err.Context["event"])
}

func TestCanonError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewIOError(ErrCodeStorage, "write failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, &CanonError{Type: ErrorTypeIO, Code: ErrCodeStorage}))
	assert.False(t, errors.Is(err, &CanonError{Type: ErrorTypeIO, Code: ErrCodeBadAttribute}))

	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeIO))
	assert.True(t, IsRecoverable(wrapped))
}

func TestTaxonomyRecoverability(t *testing.T) {
	tests := []struct {
		name        string
		err         *CanonError
		errType     ErrorType
		recoverable bool
	}{
		{"lookup", NewLookupError("[data-pagination]"), ErrorTypeLookup, true},
		{"cast", NewCastError("input", "div"), ErrorTypeCast, true},
		{"listener", NewListenerError("keydown", nil), ErrorTypeListener, false},
		{"observer", NewObserverError("detached root", nil), ErrorTypeObserver, false},
		{"parse", NewParseError(ErrCodeBadAttribute, "bad int", nil), ErrorTypeParse, true},
		{"config", NewConfigError(ErrCodeInvalidConfig, "bad port"), ErrorTypeConfig, false},
		{"validation", NewValidationError(ErrCodeInvalidPlacement, "no"), ErrorTypeValidation, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.recoverable, IsRecoverable(tt.err))
		})
	}
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))
	assert.EqualError(t, Wrap(errors.New("x"), "ctx"), "ctx: x")
}

func TestErrorCollector(t *testing.T) {
	ec := NewErrorCollector()
	assert.False(t, ec.HasErrors())
	assert.NoError(t, ec.Err())

	ec.Add(AttachError{Marker: "data-carousel", RootID: "c1", Err: errors.New("boom")})
	ec.Add(AttachError{Marker: "data-tree", Err: errors.New("bad")})
	ec.AddError(nil)
	ec.AddError(errors.New("general"))

	require.True(t, ec.HasErrors())
	assert.Len(t, ec.GetErrors(), 2)
	assert.Len(t, ec.GetAllErrors(), 3)
	assert.Len(t, ec.GetErrorsByMarker("data-tree"), 1)
	assert.False(t, ec.GetErrors()[0].Timestamp.IsZero())

	summary := ec.Summary()
	assert.Contains(t, summary, "data-carousel on c1: boom")
	assert.Contains(t, summary, "data-tree on <anonymous>: bad")
	assert.Error(t, ec.Err())

	ec.Clear()
	assert.False(t, ec.HasErrors())
}
