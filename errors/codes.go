package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the draw service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeNetwork indicates the connection dropped while a response was being read.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeStreamInterrupted indicates a chunked response was cut off mid-transfer.
	ErrCodeStreamInterrupted ErrorCode = "STREAM_INTERRUPTED"
	// ErrCodeStreamIncomplete indicates the stream closed without a terminal status.
	ErrCodeStreamIncomplete ErrorCode = "STREAM_INCOMPLETE"
)

// Generation errors
const (
	// ErrCodeGenerationFailed indicates the provider reported the task as failed.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeStreamRead is any other read failure on an open stream.
	ErrCodeStreamRead ErrorCode = "STREAM_READ_ERROR"
	// ErrCodeResultLookup indicates the result endpoint rejected a lookup.
	ErrCodeResultLookup ErrorCode = "RESULT_LOOKUP_FAILED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request is unauthorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeNetwork:            true,
	ErrCodeStreamInterrupted:  true,
	ErrCodeStreamIncomplete:   true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
