// Copyright 2026 The GroSnap Authors
// SPDX-License-Identifier: Apache-2.0

package stores

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound is returned when a store or product does not exist.
var ErrNotFound = errors.New("not found")

// ErrorType classifies store query and geocoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unknown failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit too many requests.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exceeded or access denied.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout the service or the connection timed out.
	ErrorTypeTimeout
	// ErrorTypeNotFound nothing matched.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest the service rejected the request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError unreachable or unavailable service.
	ErrorTypeNetworkError
	// ErrorTypeMalformedResponse the reply does not have the expected shape.
	ErrorTypeMalformedResponse
	// ErrorTypeRegistry the persistent registry failed.
	ErrorTypeRegistry
)

// QueryError is a failure of the geographic store query or of the registry.
// It is always distinct from an empty result.
type QueryError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// GeocodingError is an address geocoding failure.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorType(err error) (ErrorType, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Type, true
	}

	var ge *GeocodingError
	if errors.As(err, &ge) {
		return ge.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsQueryError reports whether err is a store query or registry failure.
func IsQueryError(err error) bool {
	var qe *QueryError

	return errors.As(err, &qe)
}

// IsRateLimitError reports whether err was caused by rate limiting.
func IsRateLimitError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether err was caused by an exhausted quota.
func IsQuotaExceededError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether err was caused by a timeout.
func IsTimeoutError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeTimeout
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError maps a non-success status code of a store query service.
// detail, when present, is the message the service returned.
func ClassifyHTTPError(statusCode int, detail string) *QueryError {
	qe := &QueryError{}

	switch statusCode {
	case http.StatusTooManyRequests: // 429
		qe.Type, qe.Message = ErrorTypeRateLimit, "rate limit reached"
	case http.StatusForbidden: // 403
		qe.Type, qe.Message = ErrorTypeQuotaExceeded, "quota exceeded or access denied"
	case http.StatusBadRequest: // 400
		qe.Type, qe.Message = ErrorTypeInvalidRequest, "invalid request"
	case http.StatusNotFound: // 404
		qe.Type, qe.Message = ErrorTypeNotFound, "endpoint not found"
	case http.StatusGatewayTimeout: // 504
		qe.Type, qe.Message = ErrorTypeTimeout, "service timed out"
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		qe.Type, qe.Message = ErrorTypeNetworkError, fmt.Sprintf("service unavailable (status %d)", statusCode)
	default:
		qe.Type, qe.Message = ErrorTypeUnknown, fmt.Sprintf("HTTP error %d", statusCode)
	}

	if detail != "" {
		qe.Err = errors.New(detail)
	}

	return qe
}

// classifyTransportError wraps a failure that happened before any response.
func classifyTransportError(err error) *QueryError {
	if IsTimeoutError(err) {
		return &QueryError{Type: ErrorTypeTimeout, Message: "store query timed out", Err: err}
	}

	return &QueryError{Type: ErrorTypeNetworkError, Message: "store query failed", Err: err}
}

// ValidationError is returned when a store or product is rejected before
// reaching the registry.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a rejected input.
func IsValidationError(err error) bool {
	var ve *ValidationError

	return errors.As(err, &ve)
}

// registryError wraps a registry failure, keeping ErrNotFound and validation
// errors as they are.
func registryError(msg string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || IsValidationError(err) {
		return err
	}

	return &QueryError{Type: ErrorTypeRegistry, Message: msg, Err: err}
}
