// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoder

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &GeocodingError{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "wrapped rate limit error",
			err:  fmt.Errorf("google: %w", &GeocodingError{Type: ErrorTypeRateLimit}),
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("nominatim returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound, Message: "rate limit"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "quota exceeded error type",
			err:  &GeocodingError{Type: ErrorTypeQuotaExceeded},
			want: true,
		},
		{
			name: "google over query limit",
			err:  errors.New("google maps status: OVER_QUERY_LIMIT"),
			want: true,
		},
		{
			name: "message contains quota exceeded",
			err:  errors.New("Quota Exceeded for today"),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection refused"),
			want: false,
		},
	}, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &GeocodingError{Type: ErrorTypeTimeout},
			want: true,
		},
		{
			name: "deadline exceeded",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "network error type",
			err:  &GeocodingError{Type: ErrorTypeNetworkError, Message: "timeout"},
			want: false,
		},
	}, IsTimeoutError)
}

func TestIsNotFoundError(t *testing.T) {
	runErrorCheckTest(t, []errorCheckTestCase{
		{
			name: "not found error type",
			err:  &GeocodingError{Type: ErrorTypeNotFound},
			want: true,
		},
		{
			name: "plain error never matches",
			err:  errors.New("not found"),
			want: false,
		},
	}, IsNotFoundError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadRequest, ErrorTypeInvalidRequest},
		{http.StatusNotFound, ErrorTypeNotFound},
		{http.StatusServiceUnavailable, ErrorTypeNetworkError},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusGatewayTimeout, ErrorTypeNetworkError},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := ClassifyHTTPError(tt.status, "")
			assert.Equal(t, tt.want, err.Type)
			assert.NoError(t, err.Unwrap())
		})
	}
}

func TestClassifyHTTPErrorKeepsBody(t *testing.T) {
	err := ClassifyHTTPError(http.StatusBadRequest, "  missing address  ")

	assert.Equal(t, "invalid request: missing address", err.Error())
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "rate_limit", ErrorTypeRateLimit.String())
	assert.Equal(t, "not_found", ErrorTypeNotFound.String())
	assert.Equal(t, "unknown", ErrorType(99).String())
}
