package client

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrAuthentication is matched by HTTP errors with status 401 or 403,
	// which api.data.gov returns for a missing or invalid api_key.
	ErrAuthentication = errors.New("authentication failed")

	// ErrRateLimited is matched by 429 responses and by requests refused
	// locally because the API quota is spent.
	ErrRateLimited = errors.New("rate limited")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassAuth represents 401/403 responses.
	ErrorClassAuth ErrorClass = "auth"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassUnexpected represents any other non-200 status.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// maxBodySnippet bounds the response body kept on an HTTPError.
const maxBodySnippet = 256

// HTTPError is returned for any response whose status is not 200.
type HTTPError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	URL        string // query credentials redacted
	Body       string // leading bytes of the response body
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s error (status %d): %s", e.ErrorClass, e.StatusCode, e.Message)
	if e.URL != "" {
		msg += " [" + e.URL + "]"
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether the error matches one of the sentinel errors of its class.
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.ErrorClass == ErrorClassAuth
	case ErrRateLimited:
		return e.ErrorClass == ErrorClassRateLimit
	}
	return false
}

// classifyStatus maps a non-200 HTTP status to an ErrorClass.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorClassAuth
	case statusCode == 429:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet]) + "..."
	}
	return string(body)
}
