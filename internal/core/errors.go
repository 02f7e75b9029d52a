package core

import (
	"errors"
	"fmt"
)

// ErrorTag classifies a failure for the calling surface. Every error that
// crosses a capability boundary carries exactly one tag.
type ErrorTag string

const (
	// TagConfig marks invalid chunking or token parameters. Fatal until the
	// configuration is fixed.
	TagConfig ErrorTag = "config_error"
	// TagEmbedding marks a per-chunk vectorization failure. Non-fatal,
	// collected into the ingestion report.
	TagEmbedding ErrorTag = "embedding_error"
	// TagInvalidQuery marks an empty or malformed query. Fatal to the turn.
	TagInvalidQuery ErrorTag = "invalid_query"
	// TagRetrieval marks an unreachable index. Fatal to the turn, safe to retry.
	TagRetrieval ErrorTag = "retrieval_error"
	// TagTimeout marks a model dispatch that exceeded its budget. Safe to retry.
	TagTimeout ErrorTag = "timeout"
	// TagModelClient marks a transport or quota failure from the model
	// collaborator; retryability is whatever the collaborator reported.
	TagModelClient ErrorTag = "model_client_error"
)

// Error is the structured failure surfaced to callers: a taxonomy tag plus a
// human-readable message, never a raw wrapped chain.
type Error struct {
	Tag       ErrorTag
	Message   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tag, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the rendering shown on a calling surface.
func (e *Error) UserMessage() string {
	return fmt.Sprintf("[%s] %s", e.Tag, e.Message)
}

func newError(tag ErrorTag, retryable bool, err error, format string, args ...any) *Error {
	return &Error{
		Tag:       tag,
		Message:   fmt.Sprintf(format, args...),
		Retryable: retryable,
		Err:       err,
	}
}

func NewConfigError(format string, args ...any) *Error {
	return newError(TagConfig, false, nil, format, args...)
}

func NewInvalidQueryError(format string, args ...any) *Error {
	return newError(TagInvalidQuery, false, nil, format, args...)
}

func NewEmbeddingError(err error, format string, args ...any) *Error {
	return newError(TagEmbedding, false, err, format, args...)
}

func NewRetrievalError(err error, format string, args ...any) *Error {
	return newError(TagRetrieval, true, err, format, args...)
}

func NewTimeoutError(err error, format string, args ...any) *Error {
	return newError(TagTimeout, true, err, format, args...)
}

func NewModelClientError(err error, retryable bool, format string, args ...any) *Error {
	return newError(TagModelClient, retryable, err, format, args...)
}

// TagOf extracts the taxonomy tag from anywhere in the chain.
func TagOf(err error) (ErrorTag, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Tag, true
	}
	return "", false
}

func IsTag(err error, tag ErrorTag) bool {
	t, ok := TagOf(err)
	return ok && t == tag
}

// UserMessage renders any error for a calling surface. Untagged errors are
// shown without a tag bracket rather than leaking the wrap chain.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return err.Error()
}
