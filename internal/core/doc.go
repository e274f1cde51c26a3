// Package core is the application layer of AcadFlow.
//
// It is independent of any transport: the HTTP server and the CLI both
// drive a [Service].
//
// # Grid state
//
// The HTTP host keeps no session. Each request rebuilds a grid from the
// store and replays a [Query] (search, filters, sort, page, hidden columns,
// selection) onto it before rendering or exporting.
//
// # Imports
//
// [Service.Import] takes a slot from the [ImportLimiter], parses the file with
// the preset's header mapping, normalizer and validator, then appends the
// valid rows to the store. Invalid rows are reported per line and skipped.
//
// # Exports
//
// [Service.Export] wires the grid's export callback to a tabular exporter so
// the full filtered and sorted collection, in visible column order, is
// written to the given sink.
//
// # Error Handling
//
// Technical errors are mapped to user messages with [MapError]:
//
//   - IMP001-IMP004: import errors (columns, limiter, cancel, timeout)
//   - EXP001-EXP002: export errors
//   - FILE001-FILE005: file errors (size, format, encoding)
//   - PRE001, ROW001: unknown kind, unknown record
//   - DB001-DB006: store errors
//
// # Journal
//
// Imports, exports, deletions and resets are recorded in an in-memory
// [AuditLog] with severity levels, pruned by [Service.StartRetention].
package core
