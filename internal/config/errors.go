package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failure at the Source boundary. Callers branch
// on kind with errors.As(&SourceError{}) rather than string-matching
// messages.
type ErrorKind string

const (
	ErrKindNoSource    ErrorKind = "no_config_source"
	ErrKindNotFound    ErrorKind = "not_found"
	ErrKindParse       ErrorKind = "parse"
	ErrKindValidation  ErrorKind = "validation"
	ErrKindUnsupported ErrorKind = "unsupported_format"
	ErrKindIO          ErrorKind = "io"
)

// SourceError wraps a lower-level failure with the Source that produced
// it and the ErrorKind it belongs to.
type SourceError struct {
	Kind   ErrorKind
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &SourceError{Kind: ErrKindNotFound}) style
// checks that only compare Kind, ignoring Source and Err.
func (e *SourceError) Is(target error) bool {
	var t *SourceError
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	return true
}

// NewSourceError wraps err with Kind and the originating source name.
func NewSourceError(kind ErrorKind, source string, err error) *SourceError {
	return &SourceError{Kind: kind, Source: source, Err: err}
}

// FieldError is one structural violation found during Validate, carrying
// enough context to render "route / field — message (suggestion)" lines.
type FieldError struct {
	Route      string
	Field      string
	Message    string
	Suggestion string
}

func (f FieldError) String() string {
	var b strings.Builder
	if f.Route != "" {
		b.WriteString(f.Route)
		b.WriteString(" / ")
	}
	b.WriteString(f.Field)
	b.WriteString(" — ")
	b.WriteString(f.Message)
	if f.Suggestion != "" {
		b.WriteString(" (")
		b.WriteString(f.Suggestion)
		b.WriteString(")")
	}
	return b.String()
}

// ValidationErrors is a non-empty list of FieldError, satisfying error.
// It is the concrete type wrapped by a SourceError{Kind: ErrKindValidation}
// when a Source needs to return it as a single error value.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	lines := make([]string, len(v))
	for i, f := range v {
		lines[i] = f.String()
	}
	return strings.Join(lines, "; ")
}

// AsValidationErrors extracts a ValidationErrors from err, unwrapping a
// SourceError if necessary.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
