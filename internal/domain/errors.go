package domain

import (
	"fmt"
	"net/http"
)

// NetworkError reports a transport failure or a non-successful response.
type NetworkError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request %s: status %d %s: %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not valid JSON or does not
// have the expected shape.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseError reports a non-numeric value where a number was expected.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %q is not a number", e.Field, e.Value)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TypeConstraintError reports extractor input that is not text.
type TypeConstraintError struct {
	Got string
}

func (e *TypeConstraintError) Error() string {
	return fmt.Sprintf("extractor input must be text, got %s", e.Got)
}
