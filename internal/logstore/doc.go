// Package logstore implements the durable, size-bounded rolling log that
// backs blackbox diagnostics. A Store owns a single plain-text file on disk,
// tracks its size incrementally, appends newline-terminated entries, and
// trims the oldest complete lines once the size cap is exceeded.
//
// # Concurrency
//
// All file mutation is funneled through one worker goroutine per Store. The
// public Append is an enqueue-and-return hand-off: callers never block on
// disk I/O. ReadAll is the one synchronous operation: it round-trips through
// the same queue, so it always observes every previously enqueued append.
//
// # Crash safety
//
// The store prioritizes "never crash the host" over "never lose a line":
//
//   - Appends are dropped silently when free disk space falls below the
//     configured floor.
//   - A log file deleted out from under the store is recreated (within a
//     bounded retry budget) and the append retried exactly once.
//   - Trimming rewrites the file via temp-file-then-rename, so a partially
//     written file is never observable; any trim failure degrades to a no-op
//     and is retried on the next append.
//
// # Basic Usage
//
//	store := logstore.New(logstore.WithAppVersion("v1.2.0"))
//	if err := store.Initialize(filepath.Join(dir, "diagnostics.log")); err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.Append("2026-01-02 15:04:05.000 | hello")
//
//	content, err := store.ReadAll()
package logstore
