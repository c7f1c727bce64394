package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.NotNil(t, watcher.debouncer)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestGlobFilter(t *testing.T) {
	base := filepath.Join("srv", "site")
	filter := GlobFilter(base, "**/*.html", "**/*.scenario.{yaml,yml}")

	testCases := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(base, "index.html"), true},
		{filepath.Join(base, "pages", "a", "b.html"), true},
		{filepath.Join(base, "flows", "cart.scenario.yml"), true},
		{filepath.Join(base, "config.yaml"), false},
		{filepath.Join(base, "main.go"), false},
		{filepath.Join("srv", "other.html"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestIgnoreFilter(t *testing.T) {
	base := "site"
	filter := IgnoreFilter(base, ".git/**", "node_modules/**", "**/*.tmp")

	testCases := []struct {
		path     string
		expected bool
	}{
		{filepath.Join(base, "index.html"), true},
		{filepath.Join(base, ".git", "HEAD"), false},
		{filepath.Join(base, "node_modules", "x", "y.html"), false},
		{filepath.Join(base, "draft.tmp"), false},
		{filepath.Join("elsewhere", "x.html"), true},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, filter(tc.path))
		})
	}
}

func TestAddPathRejectsTraversal(t *testing.T) {
	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.Error(t, watcher.AddPath("../outside"))
	assert.Error(t, watcher.AddPath(filepath.Join(t.TempDir(), "missing")))
	assert.NoError(t, watcher.AddPath(t.TempDir()))
}

func TestDebouncerCoalesces(t *testing.T) {
	d := &Debouncer{
		delay:  20 * time.Millisecond,
		events: make(chan ChangeEvent, 10),
		output: make(chan []ChangeEvent, 1),
	}
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.html"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.html"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.html"})

	select {
	case batch := <-d.output:
		require.Len(t, batch, 2)
		assert.Equal(t, "a.html", batch[0].Path)
		assert.Equal(t, "b.html", batch[1].Path)
		assert.Equal(t, EventTypeModified, batch[1].Type, "last event per path wins")
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
}

func TestWatcherReportsMatchingChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))

	watcher, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	watcher.SkipDirs("node_modules")
	watcher.AddFilter(GlobFilter(dir, "**/*.html"))
	watcher.AddFilter(IgnoreFilter(dir, "node_modules/**"))

	batches := make(chan []ChangeEvent, 10)
	watcher.AddHandler(func(events []ChangeEvent) error {
		batches <- events
		return nil
	})
	require.NoError(t, watcher.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep.html"), []byte("x"), 0o644))
	page := filepath.Join(dir, "pages", "index.html")
	require.NoError(t, os.WriteFile(page, []byte("<p>hi</p>"), 0o644))

	select {
	case batch := <-batches:
		require.NotEmpty(t, batch)
		for _, ev := range batch {
			assert.Equal(t, page, ev.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
