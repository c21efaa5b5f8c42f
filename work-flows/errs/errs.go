/*
Package errs defines the error taxonomy shared by the assistant's client-side components.

Every failure surfaced to the user carries a Kind so the caller can decide how to present
it (inline message, in-conversation error, disabled control) without inspecting strings.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for presentation purposes.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth is a rejected or missing credential (HTTP 401).
	KindAuth
	// KindValidation is input rejected on the client before any request is made.
	KindValidation
	// KindNetwork covers transport failures and non-2xx backend replies.
	KindNetwork
	// KindCapability means a feature is not available on this machine.
	KindCapability
	// KindRecognition is an error reported by a speech recognition engine.
	KindRecognition
	// KindSynthesis is an error reported by a speech synthesis engine.
	KindSynthesis
	// KindBusy rejects a call while a previous one is still outstanding.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AuthError"
	case KindValidation:
		return "ValidationError"
	case KindNetwork:
		return "NetworkOrServerError"
	case KindCapability:
		return "CapabilityError"
	case KindRecognition:
		return "RecognitionError"
	case KindSynthesis:
		return "SynthesisError"
	case KindBusy:
		return "Busy"
	default:
		return "UnknownError"
	}
}

// Error is the concrete error type returned by the client packages.
type Error struct {
	Kind Kind

	// Status is the HTTP status of the failed request, or 0 when no response was received.
	Status int

	// Detail is the user-presentable message, usually the backend's "detail" field.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, err error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

// Unsupported reports a missing speech capability.
func Unsupported(feature string) *Error {
	return &Error{Kind: KindCapability, Detail: feature + " is not supported on this system"}
}

// FromStatus maps a non-2xx HTTP reply to an Error.
func FromStatus(status int, detail string) *Error {
	kind := KindNetwork
	if status == http.StatusUnauthorized {
		kind = KindAuth
	}
	return &Error{Kind: kind, Status: status, Detail: detail}
}

// Transport wraps a failure that happened before any response arrived.
func Transport(err error) *Error {
	return &Error{Kind: KindNetwork, Err: err}
}

var (
	ErrBusy         = New(KindBusy, "a message is already being sent")
	ErrEmptyMessage = New(KindValidation, "message is empty")
	ErrNotLoggedIn  = New(KindAuth, "not logged in")
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// UserMessage returns the detail carried by err, falling back to fallback
// when the error has none.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Detail != "" {
		return e.Detail
	}
	return fallback
}
