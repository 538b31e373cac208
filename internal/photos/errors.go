package photos

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed album request. It is decided once, where the
// response is read, and consumers switch on it instead of inspecting messages.
type Kind int

const (
	KindNone Kind = iota
	// KindRemote is any non-2xx response other than a disabled API.
	KindRemote
	// KindAPIDisabled means the Photos Library API is not enabled for the
	// OAuth client's Cloud project.
	KindAPIDisabled
	// KindTransport means no response was received.
	KindTransport
	// KindDecode means a 2xx body could not be decoded.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindRemote:
		return "remote"
	case KindAPIDisabled:
		return "api-disabled"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	StatusPermissionDenied = "PERMISSION_DENIED"
	apiDisabledMarker      = "Photos Library API has not been used"
)

// Error is the classified album request failure.
type Error struct {
	Kind    Kind
	Message string
	Status  string // provider status, e.g. PERMISSION_DENIED
	Code    int    // provider code, or the HTTP status when the envelope is unusable
	Err     error  // transport or decode cause
}

func (e *Error) Error() string {
	switch {
	case e.Status != "":
		return fmt.Sprintf("%s (%s, %d)", e.Message, e.Status, e.Code)
	case e.Err != nil && e.Message == "":
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NewResponseError classifies a non-2xx response from its envelope fields.
func NewResponseError(message, status string, code int) *Error {
	kind := KindRemote
	if status == StatusPermissionDenied && strings.Contains(message, apiDisabledMarker) {
		kind = KindAPIDisabled
	}
	return &Error{Kind: kind, Message: message, Status: status, Code: code}
}

// NewTransportError wraps a failure that produced no response.
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func NewDecodeError(err error) *Error {
	return &Error{Kind: KindDecode, Message: fmt.Sprintf("decode album page: %v", err), Err: err}
}

// KindOf reports the classification of err. Unclassified non-nil errors are
// treated as transport failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindTransport
}

// MessageOf returns the human-readable message carried by err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return err.Error()
}
