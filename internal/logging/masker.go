package logging

import (
	"context"
	"log/slog"
	"regexp"
)

// Bot API tokens look like "123456:AA...", and appear in request URLs as "bot123456:AA...".
var telegramTokenRegex = regexp.MustCompile(`\d{5,}:[A-Za-z0-9_-]{30,}`)

const tokenMask = "***:***masked-token***"

// MaskTokens replaces every Telegram bot token in text.
func MaskTokens(text string) string {
	return telegramTokenRegex.ReplaceAllString(text, tokenMask)
}

// TokenMaskerHandler wraps a slog.Handler and masks bot tokens in messages and attributes.
type TokenMaskerHandler struct {
	handler slog.Handler
}

func NewTokenMaskerHandler(h slog.Handler) *TokenMaskerHandler {
	return &TokenMaskerHandler{handler: h}
}

func (h *TokenMaskerHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TokenMaskerHandler) Handle(ctx context.Context, record slog.Record) error {
	// Build a fresh record: the original may be reused by slog after Handle returns.
	r := slog.NewRecord(record.Time, record.Level, MaskTokens(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, r)
}

func (h *TokenMaskerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &TokenMaskerHandler{handler: h.handler.WithAttrs(masked)}
}

func (h *TokenMaskerHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskerHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(v slog.Value) slog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(MaskTokens(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(MaskTokens(err.Error()))
		}
		return v
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))
		for i, a := range group {
			masked[i] = maskAttr(a)
		}
		return slog.GroupValue(masked...)
	default:
		return v
	}
}
