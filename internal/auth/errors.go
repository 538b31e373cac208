package auth

import (
	"errors"
	"fmt"
)

// Popup failure types reported by consent providers.
const (
	PopupClosed       = "popup_closed"
	PopupFailedToOpen = "popup_failed_to_open"
	PopupTokenFailed  = "token_failed"
)

const placeholderClientID = "YOUR_GOOGLE_CLIENT_ID_HERE"

// PopupError reports that the consent window did not produce a token.
type PopupError struct {
	Type  string
	Cause error
}

func (e *PopupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("consent window: %s: %v", e.Type, e.Cause)
	}
	return "consent window: " + e.Type
}

func (e *PopupError) Unwrap() error { return e.Cause }

// Kind classifies sign-in failures for the login screen.
type Kind int

const (
	// KindConfiguration means the client ID is missing or still the placeholder.
	KindConfiguration Kind = iota + 1
	// KindPopup means the consent window closed, was blocked, or failed. Retrying may work.
	KindPopup
	// KindDenied means the provider answered with an error instead of a token.
	KindDenied
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindPopup:
		return "popup"
	case KindDenied:
		return "denied"
	case KindUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified sign-in failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the sign-in failure kind, or zero for nil or foreign errors.
func KindOf(err error) Kind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	return 0
}
