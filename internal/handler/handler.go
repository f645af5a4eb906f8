// Package handler turns an incoming chat message into a VSCO media reply.
//
// Per message: a cheap substring filter, a transient "Downloading" status
// message whose deletion is scheduled straight away, link validation, one
// resolver call, classification by file extension and a photo or video
// reply threaded to the original message. Every failure after the filter is
// classified (see Classify) and answered in the chat.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"vscobot/internal/domain"
	"vscobot/internal/metrics"
	"vscobot/internal/scheduler"
	"vscobot/internal/vsco"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultStatusDelay is how long the "Downloading" message stays visible.
const DefaultStatusDelay = 3000 * time.Millisecond

const (
	invalidLinkText = "*Send a valid VSCO link.*"
	downloadingText = "*Downloading*"
	mediaSendText   = "*Error contacting VSCO.*"
	catchAllText    = "An error occurred"
)

// Handler processes messages. It holds no per-message state and is safe for
// concurrent use.
type Handler struct {
	messenger   domain.Messenger
	resolver    domain.Resolver
	scheduler   scheduler.Scheduler
	statusDelay time.Duration
	logger      *slog.Logger
}

type Config struct {
	Messenger   domain.Messenger
	Resolver    domain.Resolver
	Scheduler   scheduler.Scheduler // defaults to a wall-clock timer
	StatusDelay time.Duration       // 0 means DefaultStatusDelay
	Logger      *slog.Logger
}

func New(cfg Config) *Handler {
	if cfg.Scheduler == nil {
		cfg.Scheduler = scheduler.NewTimer()
	}
	if cfg.StatusDelay <= 0 {
		cfg.StatusDelay = DefaultStatusDelay
	}
	return &Handler{
		messenger:   cfg.Messenger,
		resolver:    cfg.Resolver,
		scheduler:   cfg.Scheduler,
		statusDelay: cfg.StatusDelay,
		logger:      cfg.Logger,
	}
}

// HandleMessage runs the full flow for one message. Failures after the filter
// are answered in the chat; the returned error is only what could not be
// handled there (the status message or a reply could not be sent) and belongs
// to Recover.
func (h *Handler) HandleMessage(ctx context.Context, msg domain.IncomingMessage) error {
	h.logger.Info("message received",
		"name", msg.SenderName(),
		"username", msg.Username,
		"user_id", msg.UserID,
		"text", msg.Text,
	)

	if !vsco.PassesPrefilter(msg.Text) {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeInvalidLink).Inc()
		return h.replyInvalidLink(ctx, msg)
	}

	status, err := h.messenger.SendText(ctx, msg.ChatID, downloadingText, domain.ParseMarkdown, 0)
	if err != nil {
		return fmt.Errorf("send status message: %w", err)
	}
	h.scheduleStatusDeletion(ctx, status)

	if err := h.process(ctx, msg); err != nil {
		return h.reportFailure(ctx, msg, err)
	}
	metrics.MessagesTotal.WithLabelValues(metrics.OutcomeSent).Inc()
	return nil
}

func (h *Handler) process(ctx context.Context, msg domain.IncomingMessage) error {
	postLink, ok := vsco.FirstPostLink(msg.Text)
	if !ok {
		return errInvalidLink
	}

	// The resolver receives the whole message text, not only the matched link.
	media, err := h.resolver.Resolve(ctx, msg.Text)
	if err != nil {
		return fmt.Errorf("resolve media: %w", err)
	}

	return h.dispatch(ctx, msg, postLink, vsco.Classify(media.Image), media)
}

// scheduleStatusDeletion removes the status message after statusDelay.
// The deletion outlives ctx and its failure is only logged.
func (h *Handler) scheduleStatusDeletion(ctx context.Context, status domain.SentMessage) {
	deleteCtx := context.WithoutCancel(ctx)
	h.scheduler.AfterFunc(h.statusDelay, func() {
		if err := h.messenger.DeleteMessage(deleteCtx, status.ChatID, status.MessageID); err != nil {
			h.logger.Warn("delete status message failed",
				"chat_id", status.ChatID,
				"message_id", status.MessageID,
				"err", err,
			)
		}
	})
}

// reportFailure tells the user what went wrong, according to the error kind.
func (h *Handler) reportFailure(ctx context.Context, msg domain.IncomingMessage, err error) error {
	e := Classify(err)
	logger := h.logger.With("chat_id", msg.ChatID, "message_id", msg.MessageID, "kind", e.Kind.String())

	if !e.Kind.Soft() {
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		metrics.Failures.WithLabelValues(e.Kind.String()).Inc()
	}

	var text string
	switch e.Kind {
	case KindInvalidLink:
		logger.Info("no VSCO link found in message")
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeInvalidLink).Inc()
		return h.replyInvalidLink(ctx, msg)
	case KindBlocked:
		logger.Warn("bot was blocked by the user", "user_id", msg.UserID)
		return nil
	case KindMediaSend:
		logger.Error("error sending media", "err", e)
		text = mediaSendText
	case KindTransport:
		logger.Error("error sending message", "err", e)
		text = fmt.Sprintf("*An error occurred: %s*", escapeMarkdown(e.Error()))
	case KindUndefinedMediaType, KindUnknown:
		logger.Error("an error occurred", "err", e)
		text = fmt.Sprintf("*An error occurred. Are you sure you sent a valid VSCO link?*\n_Error: %s_", escapeMarkdown(e.Error()))
	}

	_, sendErr := h.messenger.SendText(ctx, msg.ChatID, text, domain.ParseMarkdown, msg.MessageID)
	if sendErr != nil {
		return fmt.Errorf("report %s failure: %w", e.Kind, sendErr)
	}
	return nil
}

func (h *Handler) replyInvalidLink(ctx context.Context, msg domain.IncomingMessage) error {
	_, err := h.messenger.SendText(ctx, msg.ChatID, invalidLinkText, domain.ParseMarkdown, msg.MessageID)
	return err
}

// Recover is the last line of defence for errors that escaped HandleMessage
// or HandleCommand. It logs, and for Bot API errors other than a blocked
// recipient it makes one best-effort attempt to tell the user.
func (h *Handler) Recover(ctx context.Context, msg domain.IncomingMessage, err error) {
	logger := h.logger.With("update_id", msg.UpdateID, "query", msg.Text)
	logger.Error("error while handling update", "err", err)

	var te *domain.TransportError
	if !errors.As(err, &te) {
		logger.Error("unknown error", "err", err)
		return
	}
	switch {
	case te.Network():
		logger.Error("could not contact Telegram", "method", te.Method, "err", te.Err)
	case te.Blocked():
		logger.Warn("bot was blocked by the user", "user_id", msg.UserID)
	default:
		logger.Error("error in request", "method", te.Method, "code", te.Code, "description", te.Description)
		if _, sendErr := h.messenger.SendText(ctx, msg.ChatID, catchAllText, "", 0); sendErr != nil {
			logger.Error("catch-all reply failed", "err", sendErr)
		}
	}
}

// escapeMarkdown keeps raw error text from breaking the surrounding entities.
func escapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
