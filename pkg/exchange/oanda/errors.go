package oanda

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrRequest      = errors.New("request failed")
	ErrStatus       = errors.New("unexpected http status")
	ErrDecode       = errors.New("unable to decode response")
	ErrMissingField = errors.New("missing field")
)

// RequestError means the transport could not complete the exchange.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("error making request: %v", e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequest, e.Err}
}

// StatusError means the server answered with a non 2xx status. The body is not
// interpreted.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// DecodeError means the response body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("error deserializing data from response: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

type UnknownVariantError struct {
	Field    string
	Value    string
	Expected []string
}

func (e *UnknownVariantError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unknown variant %q", e.Value)
	if e.Field != "" {
		fmt.Fprintf(&sb, " for %s", e.Field)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&sb, ", expected one of %s", strings.Join(e.Expected, ", "))
	}
	return sb.String()
}
