package domain

import "context"

// Parse modes understood by Telegram.
const (
	ParseMarkdown = "Markdown"
	ParseHTML     = "HTML"
)

// Messenger is the outbound half of the chat transport.
// A replyTo of 0 sends a plain (non-threaded) message.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text, parseMode string, replyTo int) (SentMessage, error)
	SendPhoto(ctx context.Context, chatID int64, url, caption string, replyTo int) (SentMessage, error)
	SendVideo(ctx context.Context, chatID int64, url, caption string, replyTo int) (SentMessage, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}
