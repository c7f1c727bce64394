package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// AttachError records one behavior that failed to attach to one root.
type AttachError struct {
	Marker    string
	RootID    string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (ae *AttachError) Error() string {
	root := ae.RootID
	if root == "" {
		root = "<anonymous>"
	}
	return fmt.Sprintf("%s on %s: %v", ae.Marker, root, ae.Err)
}

// Unwrap returns the underlying error.
func (ae *AttachError) Unwrap() error {
	return ae.Err
}

// ErrorCollector collects attach errors of one registry pass.
type ErrorCollector struct {
	attachErrors []AttachError
	errors       []error
	mutex        sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		attachErrors: make([]AttachError, 0),
		errors:       make([]error, 0),
	}
}

// Add adds an attach error to the collector
func (ec *ErrorCollector) Add(err AttachError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.attachErrors = append(ec.attachErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns all collected attach errors
func (ec *ErrorCollector) GetErrors() []AttachError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]AttachError, len(ec.attachErrors))
	copy(result, ec.attachErrors)
	return result
}

// GetAllErrors returns attach errors followed by general errors
func (ec *ErrorCollector) GetAllErrors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	all := make([]error, 0, len(ec.attachErrors)+len(ec.errors))
	for i := range ec.attachErrors {
		ae := ec.attachErrors[i]
		all = append(all, &ae)
	}
	all = append(all, ec.errors...)

	return all
}

// GetErrorsByMarker returns attach errors for a specific marker
func (ec *ErrorCollector) GetErrorsByMarker(marker string) []AttachError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var out []AttachError
	for _, err := range ec.attachErrors {
		if err.Marker == marker {
			out = append(out, err)
		}
	}
	return out
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.attachErrors) > 0 || len(ec.errors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.attachErrors = ec.attachErrors[:0]
	ec.errors = ec.errors[:0]
}

// Err joins everything collected into one error, or nil.
func (ec *ErrorCollector) Err() error {
	all := ec.GetAllErrors()
	if len(all) == 0 {
		return nil
	}
	return errors.Join(all...)
}

// Summary renders one line per error, for CLI output.
func (ec *ErrorCollector) Summary() string {
	var b strings.Builder
	for _, err := range ec.GetAllErrors() {
		b.WriteString(err.Error())
		b.WriteByte('\n')
	}
	return b.String()
}
