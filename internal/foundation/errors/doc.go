// Package errors provides the classified error type used by futurelink's host
// layers (configuration, publishing, the HTTP server and the CLI).
//
// The rewriting engine itself never returns errors; everything around it does,
// and these errors carry a category that decides the CLI exit code and the
// HTTP status.
//
// Example usage:
//
//	err := errors.ConfigError("unknown marker syntax").
//		WithContext("syntax", name).
//		WithCause(err).
//		Build()
package errors
