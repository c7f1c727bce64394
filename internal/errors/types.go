package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeLookup     ErrorType = "lookup"
	ErrorTypeCast       ErrorType = "cast"
	ErrorTypeListener   ErrorType = "listener"
	ErrorTypeObserver   ErrorType = "observer"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes.
const (
	ErrCodeElementNotFound  = "ERR_ELEMENT_NOT_FOUND"
	ErrCodeUnexpectedNode   = "ERR_UNEXPECTED_NODE"
	ErrCodeListenerFailed   = "ERR_LISTENER_FAILED"
	ErrCodeObserverFailed   = "ERR_OBSERVER_FAILED"
	ErrCodeBadAttribute     = "ERR_BAD_ATTRIBUTE"
	ErrCodeBadSelector      = "ERR_BAD_SELECTOR"
	ErrCodeInvalidConfig    = "ERR_INVALID_CONFIG"
	ErrCodeStorage          = "ERR_STORAGE"
	ErrCodeAttachPanic      = "ERR_ATTACH_PANIC"
	ErrCodeInvalidPlacement = "ERR_INVALID_PLACEMENT"
	ErrCodeNodeNotFound     = "ERR_NODE_NOT_FOUND"
	ErrCodeCycle            = "ERR_CYCLE"
	ErrCodeUnknownColumn    = "ERR_UNKNOWN_COLUMN"
	ErrCodeMarkdown         = "ERR_MARKDOWN"
	ErrCodeScenario         = "ERR_SCENARIO"
	ErrCodeBadInput         = "ERR_BAD_INPUT"
)

// CanonError is a structured error type with context.
type CanonError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	Recoverable bool
}

// Error implements the error interface.
func (e *CanonError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *CanonError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code.
func (e *CanonError) Is(target error) bool {
	var t *CanonError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *CanonError) WithContext(key string, value interface{}) *CanonError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithComponent adds component context.
func (e *CanonError) WithComponent(component string) *CanonError {
	e.Component = component

	return e
}

// NewLookupError reports an element that a selector did not find.
func NewLookupError(selector string) *CanonError {
	return &CanonError{
		Type:        ErrorTypeLookup,
		Code:        ErrCodeElementNotFound,
		Message:     fmt.Sprintf("no element matches %q", selector),
		Context:     map[string]interface{}{"selector": selector},
		Recoverable: true,
	}
}

// NewCastError reports a node that is not the expected element type.
func NewCastError(expected, actual string) *CanonError {
	return &CanonError{
		Type:        ErrorTypeCast,
		Code:        ErrCodeUnexpectedNode,
		Message:     fmt.Sprintf("expected %s element, got %s", expected, actual),
		Recoverable: true,
	}
}

// NewListenerError wraps a failed listener registration.
func NewListenerError(event string, cause error) *CanonError {
	return &CanonError{
		Type:        ErrorTypeListener,
		Code:        ErrCodeListenerFailed,
		Message:     fmt.Sprintf("failed to add %s listener", event),
		Cause:       cause,
		Context:     map[string]interface{}{"event": event},
		Recoverable: false,
	}
}

// NewObserverError wraps a failed observer subscription.
func NewObserverError(reason string, cause error) *CanonError {
	return &CanonError{
		Type:        ErrorTypeObserver,
		Code:        ErrCodeObserverFailed,
		Message:     reason,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewParseError reports an attribute or token that could not be parsed.
func NewParseError(code, message string, cause error) *CanonError {
	return &CanonError{
		Type:        ErrorTypeParse,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *CanonError {
	return &CanonError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an IO error.
func NewIOError(code, message string, cause error) *CanonError {
	return &CanonError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *CanonError {
	return &CanonError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *CanonError {
	return &CanonError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable reports whether the error chain contains a recoverable
// CanonError.
func IsRecoverable(err error) bool {
	var ce *CanonError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}

	return false
}

// IsType reports whether the error chain contains a CanonError of the given
// type.
func IsType(err error, errorType ErrorType) bool {
	var ce *CanonError
	if errors.As(err, &ce) {
		return ce.Type == errorType
	}

	return false
}

// Wrap annotates err with a message. Returns nil for a nil err.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", message, err)
}
