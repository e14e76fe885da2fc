package grounding

import (
	"errors"
	"strings"
)

// ApiKeyMarker is the phrase every configuration failure message contains.
const ApiKeyMarker = "API Key"

// Kind classifies failures of the grounding capability.
type Kind int

const (
	KindGeneric Kind = iota
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	default:
		return "generic"
	}
}

// Error is a failure returned by a Searcher. Message is shown to the user as-is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message carried by err, unwrapped.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Message
	}
	return err.Error()
}

// IsConfigurationError reports whether err was caused by a missing or invalid
// credential. Errors without a structured kind are matched on ApiKeyMarker.
func IsConfigurationError(err error) bool {
	if err == nil {
		return false
	}
	var gErr *Error
	if errors.As(err, &gErr) && gErr.Kind == KindConfiguration {
		return true
	}
	return IsConfigurationMessage(err.Error())
}

// IsConfigurationMessage is the string-level check used where only a message survives.
func IsConfigurationMessage(msg string) bool {
	return strings.Contains(msg, ApiKeyMarker)
}
