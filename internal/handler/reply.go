package handler

import (
	"context"
	"fmt"
	"html"

	"vscobot/internal/domain"
	"vscobot/internal/metrics"
)

// FormatCaption renders the HTML caption attached to every media reply:
// the description in bold, linked to the post, then the author's profile.
func FormatCaption(postLink string, media *domain.ResolvedMedia) string {
	return fmt.Sprintf(`<b><a href="%s">%s</a></b>`+"\n"+`<i>By</i> <a href="https://%s">%s</a>`,
		html.EscapeString(postLink),
		html.EscapeString(media.Description),
		html.EscapeString(media.ProfileLink),
		html.EscapeString(media.Name),
	)
}

// dispatch sends media as a photo or video reply to msg. An unknown kind
// sends nothing and fails with KindUndefinedMediaType.
func (h *Handler) dispatch(ctx context.Context, msg domain.IncomingMessage, postLink string, kind domain.MediaKind, media *domain.ResolvedMedia) error {
	caption := FormatCaption(postLink, media)

	var err error
	switch kind {
	case domain.MediaPhoto:
		_, err = h.messenger.SendPhoto(ctx, msg.ChatID, media.Image, caption, msg.MessageID)
	case domain.MediaVideo:
		_, err = h.messenger.SendVideo(ctx, msg.ChatID, media.Image, caption, msg.MessageID)
	default:
		return errUndefinedMediaType
	}
	if err != nil {
		return err
	}

	h.logger.Info("media sent", "kind", kind.String(), "chat_id", msg.ChatID)
	metrics.MediaSent.WithLabelValues(kind.String()).Inc()
	return nil
}
