package aientity

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the text to extract from is empty or only
// whitespace. No model call is made.
var ErrEmptyInput = errors.New("input text is empty")

// ErrInvalidSchema is returned when a descriptor cannot be built.
var ErrInvalidSchema = errors.New("invalid schema")

// TransportError reports that the completion endpoint could not be reached or
// its response could not be read.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a non-2xx status or an error envelope returned by the API.
// StatusCode is the HTTP status of the response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// ProtocolError reports a successful response whose body is not the expected
// chat-completion envelope.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// MalformedResponseError reports model content that is not JSON, or that has
// no array where a list of records was requested.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Err)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// FieldMappingError reports a JSON value that cannot be coerced to the
// declared type of its field.
type FieldMappingError struct {
	Field string
	Type  FieldType
	Value any
	Err   error
}

func (e *FieldMappingError) Error() string {
	msg := fmt.Sprintf("field %q: cannot map %v (%T) to %s", e.Field, e.Value, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldMappingError) Unwrap() error { return e.Err }

// SourceUnavailableError reports that a Source could not supply its content.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }
