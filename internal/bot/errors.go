package bot

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline failures so the message boundary can choose a
// distinct user-facing reply for each category.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindDownload
	KindLibrary
	KindPermission
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindDownload:
		return "download"
	case KindLibrary:
		return "library"
	case KindPermission:
		return "permission"
	default:
		return "unknown"
	}
}

// Error is the single error type produced by the pipeline. Every failure
// path normalizes to one of these; the boundary matches on Kind.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: cause}
}

// NewConfigurationError reports that the bot is not usable until configured.
func NewConfigurationError(format string, args ...any) *Error {
	return newError(KindConfiguration, nil, format, args...)
}

// NewDownloadError reports a fetch or write failure.
func NewDownloadError(format string, args ...any) *Error {
	return newError(KindDownload, nil, format, args...)
}

// WrapDownloadError wraps an underlying cause as a download failure.
func WrapDownloadError(cause error, format string, args ...any) *Error {
	return newError(KindDownload, cause, format, args...)
}

// NewLibraryError reports a library-ingestion failure.
func NewLibraryError(format string, args ...any) *Error {
	return newError(KindLibrary, nil, format, args...)
}

// WrapLibraryError wraps an underlying cause as a library failure.
func WrapLibraryError(cause error, format string, args ...any) *Error {
	return newError(KindLibrary, cause, format, args...)
}

// NewPermissionError reports a non-admin sender.
func NewPermissionError(format string, args ...any) *Error {
	return newError(KindPermission, nil, format, args...)
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Message returns the human-readable message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

func (e *Error) Unwrap() error { return e.err }

// Kind returns the failure category.
func (e *Error) Kind() Kind { return e.kind }

// KindOf returns the failure category of err, unwrapping as needed.
// Errors that did not originate in the pipeline report KindUnknown.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind()
	}
	return KindUnknown
}
