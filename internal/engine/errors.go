package engine

import (
	"errors"
	"fmt"
)

// Kind classifies analysis failures so the tool layer can tell them apart.
type Kind string

const (
	KindUpstreamFetch  Kind = "UPSTREAM_FETCH_FAILURE"
	KindClassifier     Kind = "CLASSIFIER_INVOCATION_FAILURE"
	KindMalformedReply Kind = "MALFORMED_CLASSIFIER_REPLY"
	KindInvalidInput   Kind = "INVALID_INPUT_URL"
)

// Error is an analysis error with a kind, message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel errors for use with errors.Is().
var (
	ErrUpstreamFetch  = &Error{Kind: KindUpstreamFetch, Message: "upstream fetch failed"}
	ErrClassifier     = &Error{Kind: KindClassifier, Message: "classifier invocation failed"}
	ErrMalformedReply = &Error{Kind: KindMalformedReply, Message: "malformed classifier reply"}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput, Message: "invalid input url"}
)

// UpstreamFetch wraps a listing/metadata/comment retrieval failure.
func UpstreamFetch(msg string, cause error) *Error {
	return &Error{Kind: KindUpstreamFetch, Message: msg, cause: cause}
}

// ClassifierFailure wraps a text-generation failure or an empty reply.
func ClassifierFailure(msg string, cause error) *Error {
	return &Error{Kind: KindClassifier, Message: msg, cause: cause}
}

// MalformedReply reports a reply that does not follow the prompt contract.
func MalformedReply(msg string) *Error {
	return &Error{Kind: KindMalformedReply, Message: msg}
}

// InvalidInput reports a URL or handle that cannot be parsed or resolved.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
