// Package console mirrors process console output (stdout and stderr) into
// the diagnostics log while preserving the original streams for external
// tooling.
//
// The unix implementation duplicates the standard descriptors, points them
// at internal pipes, and runs one reader goroutine per stream. Every
// captured chunk is written back to the saved original descriptor first, so
// terminal output and shell redirection keep working, then split into lines
// and forwarded to the supplied sink.
//
// The tap refuses to attach inside `go test` binaries and when the
// BLACKBOX_NO_TAP environment variable is set, since descriptor duplication is
// unreliable under test harnesses that own the standard streams.
package console
