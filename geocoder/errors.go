// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrGeocodeFailed is returned when no configured provider could geocode an address.
var ErrGeocodeFailed = errors.New("could not geocode address")

// GeocodingError represents a failure of a single provider. The chain never
// lets it escape: it only means the next provider gets a chance.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown unknown error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit rate limit reached.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exceeded.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound location not found.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest invalid request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError network error.
	ErrorTypeNetworkError
	// ErrorTypeParse the provider answered with something we could not read.
	ErrorTypeParse
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeQuotaExceeded:
		return "quota_exceeded"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeInvalidRequest:
		return "invalid_request"
	case ErrorTypeNetworkError:
		return "network"
	case ErrorTypeParse:
		return "parse"
	default:
		return "unknown"
	}
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
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsRateLimitError reports whether the error is due to rate limiting.
func IsRateLimitError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError reports whether the error is due to an exhausted quota.
func IsQuotaExceededError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	// Google Maps
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError reports whether the error is a timeout.
func IsTimeoutError(err error) bool {
	if t, ok := errorType(err); ok {
		return t == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNotFoundError reports whether the provider had no match for the address.
func IsNotFoundError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeNotFound
}

// ClassifyHTTPError maps an HTTP status code into a GeocodingError.
func ClassifyHTTPError(statusCode int, body string) *GeocodingError {
	var e *GeocodingError

	switch statusCode {
	case http.StatusTooManyRequests: // 429
		e = &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		e = &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		e = &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		e = &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		e = &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		e = &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}

	if body = strings.TrimSpace(body); body != "" {
		e.Err = errors.New(abbreviate(body, 200))
	}

	return e
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "…"
}
