// Package errors provides standardized error handling for the analysis pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Ingestion errors
	ErrCodeExtractionFailed      ErrorCode = "EXTRACTION_FAILED"
	ErrCodeRepairFailed          ErrorCode = "REPAIR_FAILED"
	ErrCodeSchemaMismatch        ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeContinuationExhausted ErrorCode = "CONTINUATION_EXHAUSTED"

	// Gateway errors
	ErrCodeGatewayTimeout       ErrorCode = "GATEWAY_TIMEOUT"
	ErrCodeGatewayRequestFailed ErrorCode = "GATEWAY_REQUEST_FAILED"

	// Collaborator errors
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewExtractionFailedError creates a non-retryable extraction error. All
// fallback paths over the envelope were exhausted without finding usable text.
func NewExtractionFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "No usable text found in gateway envelope",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRepairFailedError creates a non-retryable repair error. Repair is
// deterministic, so retrying without new input cannot help. The preview is
// bounded by the caller for log hygiene.
func NewRepairFailedError(details, preview string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRepairFailed,
		Message:   "Document could not be coerced into parseable JSON",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"preview": preview},
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaMismatchError creates a non-retryable schema error. The document
// parsed as JSON but does not match the expected record shape.
func NewSchemaMismatchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaMismatch,
		Message:   "Document does not match analysis signals schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContinuationExhaustedError creates a non-retryable error for when the
// single continuation attempt also failed to yield usable text.
func NewContinuationExhaustedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContinuationExhausted,
		Message:   "Continuation attempt did not recover usable text",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayTimeoutError creates a retryable gateway timeout error.
func NewGatewayTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayTimeout,
		Message:   "LLM gateway call timed out",
		Details:   "call exceeded configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayRequestFailedError creates a retryable gateway transport error.
func NewGatewayRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGatewayRequestFailed,
		Message:   "LLM gateway request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf returns the error code carried by err, or "" if err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
