// Package errors provides the structured error type shared by nanodraw.
// Every failure surfaced to a caller (validation, generation failure, truncated
// stream, lookup rejection) is an AppError with a machine-readable code, an
// HTTP status for the relay server and a retryable flag.
package errors
