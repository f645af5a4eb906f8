package handler

import (
	"errors"

	"vscobot/internal/domain"
)

// ErrorKind is the closed set of ways handling a message can fail.
type ErrorKind int

const (
	// KindUnknown covers resolver, network and parsing failures.
	KindUnknown ErrorKind = iota
	// KindInvalidLink is the soft failure: the message carries no VSCO post link.
	KindInvalidLink
	// KindUndefinedMediaType means the resolved media has an unrecognised extension.
	KindUndefinedMediaType
	// KindBlocked means the user blocked the bot; nobody can be told.
	KindBlocked
	// KindMediaSend means Telegram rejected the photo or video.
	KindMediaSend
	// KindTransport is any other Bot API error.
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidLink:
		return "invalid_link"
	case KindUndefinedMediaType:
		return "undefined_media_type"
	case KindBlocked:
		return "blocked"
	case KindMediaSend:
		return "media_send"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Soft reports whether the failure was caused by user input rather than by a system fault.
func (k ErrorKind) Soft() bool { return k == KindInvalidLink }

// Error is a classified handling failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

var (
	errInvalidLink        = &Error{Kind: KindInvalidLink}
	errUndefinedMediaType = &Error{Kind: KindUndefinedMediaType}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidLink:
		return "no valid VSCO link in message"
	case KindUndefinedMediaType:
		return "Undefined media type detected."
	}
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Classify maps any error from the handling flow onto an *Error.
// Bot API errors are split by cause: a blocked recipient, a rejected photo or
// video upload, or anything else. Failures to reach Telegram at all are
// treated like every other non-API failure.
func Classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	var te *domain.TransportError
	if !errors.As(err, &te) || te.Network() {
		return &Error{Kind: KindUnknown, Err: err}
	}
	switch {
	case te.Blocked():
		return &Error{Kind: KindBlocked, Err: err}
	case te.Method == domain.MethodSendPhoto || te.Method == domain.MethodSendVideo:
		return &Error{Kind: KindMediaSend, Err: err}
	default:
		return &Error{Kind: KindTransport, Err: err}
	}
}
