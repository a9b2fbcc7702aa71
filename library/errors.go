package library

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors returned by the controllers.
var (
	// ErrSubmitInProgress is returned when a form is submitted again before
	// the previous submission resolved.
	ErrSubmitInProgress = errors.New("submission already in progress")

	// ErrLoadInProgress is returned when a form is submitted while its record
	// is still being fetched.
	ErrLoadInProgress = errors.New("book details still loading")

	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete pending confirmation")

	// ErrUnknownBook is returned when an id is not part of the loaded collection.
	ErrUnknownBook = errors.New("book not in loaded collection")
)

// FetchError reports a failed round trip to the remote catalog: a non-2xx
// status, a transport failure, or an undecodable response.
type FetchError struct {
	Op         string // e.g. "fetch books", "create book"
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to ")
	sb.WriteString(e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// NotFound reports whether the server answered 404.
func (e *FetchError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// FieldError is a single field-scoped schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed the form schema. It is raised
// before any network call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// Message returns the error text for field, or "" when the field is valid.
func (e *ValidationError) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// IsFetchError reports whether err is, or wraps, a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
