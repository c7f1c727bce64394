// Package internal contains the implementation packages of canon.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - dom: headless document with events, timers, observers and a loop
//   - behavior: markers, guards and disposal scopes shared by every widget
//   - registry: marker registry, attachment, disposal and the event stream
//   - widgets: the built-in behaviors (calendar, carousel, data table,
//     drag and drop, tree, table of contents, command picker, sidebar)
//   - keynav, state: roving tabindex and typed attribute state helpers
//   - nodetree: the placement-checked layout model the server keeps in
//     step with drag and drop reorders
//   - markup: widget fixtures and Markdown rendering with heading extraction
//   - scenario: scripted interactions with collected expectation failures
//   - accessibility: keyboard and ARIA audit of attached markup
//   - server: the live document over HTTP and WebSocket
//   - watcher: debounced file watching that re-runs scenarios
//   - config, logging, errors, metrics, storage, validation, version:
//     the ambient stack
//
// # Threading
//
// A document is single-threaded. Every access happens on the goroutine
// driving its loop; other goroutines hand work over with Loop.Post. The
// registry event stream and the metrics recorder are the only pieces read
// from other goroutines.
//
// # Inter-Package Communication
//
//   - Registry publishes attach, dispose and custom events to watchers
//   - Server forwards registry events to WebSocket clients
//   - Scenario runner and CLI drive documents with a virtual clock
//   - Watcher reports changed files and the CLI re-runs matching scenarios
package internal
