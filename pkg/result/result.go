// Package result implements the ok(T)/err(code,msg) contract every CRM
// gateway and availability-engine boundary returns across.
package result

// Code is a closed taxonomy of user-facing error codes. No other value may
// cross a component boundary in an Err.
type Code string

const (
	CodeValidationError Code = "validation_error"
	CodeNotFound        Code = "not_found"
	CodeConflict        Code = "conflict"
	CodeUnauthorized    Code = "unauthorized"
	CodeRateLimited     Code = "rate_limited"
	CodeCRMUnavailable  Code = "crm_unavailable"
	CodeCRMBadResponse  Code = "crm_bad_response"
	CodeCRMError        Code = "crm_error"
	CodeNetworkError    Code = "network_error"
	CodeInvalidResponse Code = "invalid_response"
	CodeHTTPError       Code = "http_error"
	CodeInternalError   Code = "internal_error"
)

// Result is a tagged union: exactly one of Value or Err is meaningful,
// discriminated by Ok.
type Result[T any] struct {
	Ok    bool
	Value T
	Err   *Err
}

// Err carries a closed-set code plus a user-safe message. Diagnostic detail
// never belongs here; it goes to logs keyed by a trace ID.
type Err struct {
	Code    Code
	Message string
}

func (e *Err) Error() string {
	return e.Message
}

// Of wraps a successful value.
func Of[T any](v T) Result[T] {
	return Result[T]{Ok: true, Value: v}
}

// Fail wraps a closed-taxonomy error.
func Fail[T any](code Code, message string) Result[T] {
	return Result[T]{Err: &Err{Code: code, Message: message}}
}

// FromErr lifts a Go error that already carries an *Err (e.g. produced by a
// lower layer) into a Result, falling back to internal_error otherwise.
func FromErr[T any](err error) Result[T] {
	var e *Err
	if asErr, ok := err.(*Err); ok {
		e = asErr
	} else {
		e = &Err{Code: CodeInternalError, Message: "internal_error"}
	}
	return Result[T]{Err: e}
}
