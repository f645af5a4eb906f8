package domain

import (
	"context"
	"fmt"
	"strings"
)

// Resolver turns a VSCO post link into a direct media URL plus metadata.
type Resolver interface {
	Resolve(ctx context.Context, link string) (*ResolvedMedia, error)
}

// Telegram API method names reported in TransportError.Method.
const (
	MethodSendMessage   = "sendMessage"
	MethodSendPhoto     = "sendPhoto"
	MethodSendVideo     = "sendVideo"
	MethodDeleteMessage = "deleteMessage"
)

// BlockedDescription is the Bot API description returned when the recipient blocked the bot.
const BlockedDescription = "Forbidden: bot was blocked by the user"

// TransportError is a failed call to the chat platform.
// Code is the Bot API error code, or 0 when the platform could not be reached.
type TransportError struct {
	Method      string
	Code        int
	Description string
	Err         error
}

func (e *TransportError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("call to '%s' failed: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("call to '%s' failed! (%d: %s)", e.Method, e.Code, e.Description)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Network reports whether the platform could not be reached at all.
func (e *TransportError) Network() bool { return e.Code == 0 }

// Blocked reports whether the recipient has blocked the bot.
func (e *TransportError) Blocked() bool {
	return strings.Contains(e.Description, BlockedDescription)
}
