// Package errors provides custom error types for the chat client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrMissingAPIKey        = errors.New("API key not set")
	ErrConflictingFlags     = errors.New("--new and --conversation are mutually exclusive")
	ErrNoMessage            = errors.New("no message given")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrStaleHistory         = errors.New("history file changed since it was loaded")
	ErrInvalidResponse      = errors.New("invalid response format")
	ErrNoContent            = errors.New("no content in response")
)

// Kind classifies an error by the stage of the run that produced it
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindIO
	KindTransport
	KindLookup
	KindConflict
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindTransport:
		return "transport"
	case KindLookup:
		return "lookup"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Exit codes returned by the process
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// ConfigError represents an invalid or incomplete configuration
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string) *ConfigError {
	return &ConfigError{Message: message}
}

// NewConfigErrorWithCause creates a ConfigError wrapping a sentinel or cause
func NewConfigErrorWithCause(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Err: cause}
}

// IOError represents a failure reading or writing local files
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(op, path string, err error) *IOError {
	return &IOError{Op: op, Path: path, Err: err}
}

// APIError represents a completion request that reached the server but failed
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates an APIError carrying the (truncated) response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, message)
	e.Body = body
	return e
}

// NetworkError represents a transport failure before any response was read
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("network error during %s at %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// LookupError represents a reference to a conversation that does not exist
type LookupError struct {
	ID int64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("conversation not found: %d", e.ID)
}

// Is allows comparison with ErrConversationNotFound
func (e *LookupError) Is(target error) bool {
	if target == ErrConversationNotFound {
		return true
	}
	_, ok := target.(*LookupError)
	return ok
}

// NewLookupError creates a new LookupError
func NewLookupError(id int64) *LookupError {
	return &LookupError{ID: id}
}

// ConflictError is returned when the history file was rewritten by another
// process between load and save
type ConflictError struct {
	Path     string
	Expected uint64
	Found    uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("history %s changed since it was loaded (revision %d, now %d)", e.Path, e.Expected, e.Found)
}

// Is allows comparison with ErrStaleHistory
func (e *ConflictError) Is(target error) bool {
	if target == ErrStaleHistory {
		return true
	}
	_, ok := target.(*ConflictError)
	return ok
}

// NewConflictError creates a new ConflictError
func NewConflictError(path string, expected, found uint64) *ConflictError {
	return &ConflictError{Path: path, Expected: expected, Found: found}
}

// KindOf classifies err by walking its wrap chain
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		cfgErr      *ConfigError
		ioErr       *IOError
		apiErr      *APIError
		netErr      *NetworkError
		parseErr    *ParseError
		lookupErr   *LookupError
		conflictErr *ConflictError
	)

	switch {
	case errors.As(err, &cfgErr):
		return KindConfig
	case errors.As(err, &lookupErr):
		return KindLookup
	case errors.As(err, &conflictErr):
		return KindConflict
	case errors.As(err, &apiErr), errors.As(err, &netErr), errors.As(err, &parseErr):
		return KindTransport
	case errors.As(err, &ioErr):
		return KindIO
	case errors.Is(err, ErrNoContent):
		return KindTransport
	default:
		return KindUnknown
	}
}

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if KindOf(err) == KindConfig {
		return ExitUsage
	}
	return ExitError
}

// GetHTTPStatus returns the HTTP status code carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsAuthError reports whether err is an authentication failure (401/403)
func IsAuthError(err error) bool {
	if errors.Is(err, ErrMissingAPIKey) {
		return true
	}
	status := GetHTTPStatus(err)
	return status == 401 || status == 403
}

// IsRateLimitError reports whether err is an HTTP 429
func IsRateLimitError(err error) bool {
	return GetHTTPStatus(err) == 429
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
