package handler

import (
	"context"

	"vscobot/internal/domain"
	"vscobot/internal/metrics"
)

const (
	commandStart = "start"
	commandHelp  = "help"
)

const (
	welcomeText = "*Welcome!* ✨\n_Send a VSCO link._"
	helpText    = "*@anzubo Project.*\n\n_This bot downloads posts from a VSCO.\nSend a link to try it out!_"
)

// HandleCommand answers /start and /help. Any other command is handled as an
// ordinary message, which ends in the invalid-link reply.
func (h *Handler) HandleCommand(ctx context.Context, msg domain.IncomingMessage, command string) error {
	var text string
	switch command {
	case commandStart:
		text = welcomeText
		h.logger.Info("new user added",
			"user_id", msg.UserID,
			"name", msg.SenderName(),
			"username", msg.Username,
		)
	case commandHelp:
		text = helpText
		h.logger.Info("help command sent", "user_id", msg.UserID)
	default:
		return h.HandleMessage(ctx, msg)
	}

	metrics.MessagesTotal.WithLabelValues(metrics.OutcomeCommand).Inc()
	_, err := h.messenger.SendText(ctx, msg.ChatID, text, domain.ParseMarkdown, 0)
	return err
}
