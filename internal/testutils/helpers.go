// Package testutils holds helpers shared by package tests: parsing and
// rendering documents, attaching behaviors, and laying out temporary
// project trees.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/canon/internal/behavior"
	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/logging"
	"github.com/conneroisu/canon/internal/markup"
	"github.com/conneroisu/canon/internal/registry"
)

// ParseDocument parses markup or fails the test.
func ParseDocument(t testing.TB, source string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(source)
	require.NoError(t, err)
	return doc
}

// RenderDocument renders c and parses the result.
func RenderDocument(t testing.TB, c templ.Component) *dom.Document {
	t.Helper()
	source, err := markup.Render(context.Background(), c)
	require.NoError(t, err)
	return ParseDocument(t, source)
}

// AttachAll registers behaviors, attaches them to doc and drains the
// microtask queue. Any attach error fails the test. The registry is
// disposed when the test ends.
func AttachAll(t testing.TB, doc *dom.Document, behaviors ...behavior.Behavior) *registry.Registry {
	t.Helper()
	reg := registry.New(logging.NewTestLogger(), nil)
	for _, b := range behaviors {
		require.NoError(t, reg.Register(b))
	}
	require.NoError(t, reg.Start(context.Background(), doc))
	doc.Loop().Flush()
	t.Cleanup(reg.Dispose)
	return reg
}

// CreateTempProject writes files, keyed by slash-separated relative path,
// under a fresh temporary directory and returns the directory.
func CreateTempProject(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// WaitFor polls cond every 10ms until it holds, failing the test after
// timeout.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s: condition not met within %v", msg, timeout)
}
