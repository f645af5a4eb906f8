package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"vscobot/internal/domain"
	"vscobot/internal/logging"
	"vscobot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultPollTimeout = 30
	defaultConcurrency = 5
	unauthorizedText   = "⛔ Unauthorized. Your user ID is not in the allow list."
)

// MessageHandler is what the channel feeds each update into.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg domain.IncomingMessage) error
	HandleCommand(ctx context.Context, msg domain.IncomingMessage, command string) error
	Recover(ctx context.Context, msg domain.IncomingMessage, err error)
}

// botAPI is the subset of *tgbotapi.BotAPI used for outbound calls.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Telegram receives updates by long polling and implements domain.Messenger.
type Telegram struct {
	token       string
	allowFrom   []int64 // empty = allow all
	pollTimeout int
	concurrency int
	debug       bool
	logger      *slog.Logger

	bot *tgbotapi.BotAPI
	api botAPI

	wg sync.WaitGroup
}

type TelegramConfig struct {
	Token       string
	AllowFrom   []string // user IDs as strings
	PollTimeout int      // seconds
	Concurrency int      // max updates handled at once
	Debug       bool
	Logger      *slog.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	var allowed []int64
	for _, s := range cfg.AllowFrom {
		if id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			allowed = append(allowed, id)
		}
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Telegram{
		token:       cfg.Token,
		allowFrom:   allowed,
		pollTimeout: cfg.PollTimeout,
		concurrency: cfg.Concurrency,
		debug:       cfg.Debug,
		logger:      cfg.Logger,
	}
}

// Connect authenticates with the Bot API. It must succeed before Run or any
// Messenger method is used.
func (t *Telegram) Connect() error {
	if err := tgbotapi.SetLogger(&logging.TGBotAPIAdapter{Logger: t.logger.With("component", "tgbotapi")}); err != nil {
		return fmt.Errorf("telegram logger: %w", err)
	}
	bot, err := tgbotapi.NewBotAPI(t.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = t.debug
	t.bot = bot
	t.api = bot
	t.logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)
	return nil
}

// Run polls for updates until ctx is cancelled, handling each one on its own
// goroutine. It returns after every in-flight update has finished.
func (t *Telegram) Run(ctx context.Context, h MessageHandler) error {
	if t.bot == nil {
		return errors.New("telegram: Run called before Connect")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.bot.GetUpdatesChan(u)

	t.logger.Info("telegram polling started", "concurrency", t.concurrency)

	sem := make(chan struct{}, t.concurrency)
	defer t.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("telegram channel stopping")
			t.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, command, ok := t.convertUpdate(update)
			if !ok {
				continue
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				continue
			}
			t.wg.Add(1)
			go func() {
				defer t.wg.Done()
				defer func() { <-sem }()
				t.dispatch(ctx, h, msg, command)
			}()
		}
	}
}

// convertUpdate extracts a text message from update. Updates without text are skipped.
func (t *Telegram) convertUpdate(update tgbotapi.Update) (domain.IncomingMessage, string, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.From == nil {
		return domain.IncomingMessage{}, "", false
	}
	if m.Text == "" {
		t.logger.Debug("ignoring update without text", "update_id", update.UpdateID, "chat_id", m.Chat.ID)
		return domain.IncomingMessage{}, "", false
	}

	msg := domain.IncomingMessage{
		UpdateID:  update.UpdateID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		UserID:    m.From.ID,
		FirstName: m.From.FirstName,
		LastName:  m.From.LastName,
		Username:  m.From.UserName,
		Text:      m.Text,
	}
	var command string
	if m.IsCommand() {
		command = m.Command()
	}
	return msg, command, true
}

// dispatch handles one message, timing it and routing anything that escapes
// the handler (errors and panics alike) to its catch-all.
func (t *Telegram) dispatch(ctx context.Context, h MessageHandler, msg domain.IncomingMessage, command string) {
	start := time.Now()
	metrics.InFlight.Inc()
	defer func() {
		metrics.InFlight.Dec()
		elapsed := time.Since(start)
		metrics.UpdateDuration.Observe(elapsed.Seconds())
		t.logger.Info("update handled", "update_id", msg.UpdateID, "response_time_ms", elapsed.Milliseconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			h.Recover(ctx, msg, fmt.Errorf("panic: %v", r))
		}
	}()

	if !t.isAllowed(msg.UserID) {
		t.logger.Warn("unauthorized telegram user",
			"user_id", msg.UserID,
			"username", msg.Username,
		)
		metrics.MessagesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		if _, err := t.SendText(ctx, msg.ChatID, unauthorizedText, "", 0); err != nil {
			h.Recover(ctx, msg, err)
		}
		return
	}

	var err error
	if command != "" {
		err = h.HandleCommand(ctx, msg, command)
	} else {
		err = h.HandleMessage(ctx, msg)
	}
	if err != nil {
		h.Recover(ctx, msg, err)
	}
}

func (t *Telegram) isAllowed(userID int64) bool {
	if len(t.allowFrom) == 0 {
		return true
	}
	for _, id := range t.allowFrom {
		if id == userID {
			return true
		}
	}
	return false
}

// --- domain.Messenger ---

func (t *Telegram) SendText(ctx context.Context, chatID int64, text, parseMode string, replyTo int) (domain.SentMessage, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	msg.ReplyToMessageID = replyTo
	return t.send(ctx, domain.MethodSendMessage, chatID, msg)
}

func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, url, caption string, replyTo int) (domain.SentMessage, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(url))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyToMessageID = replyTo
	return t.send(ctx, domain.MethodSendPhoto, chatID, photo)
}

func (t *Telegram) SendVideo(ctx context.Context, chatID int64, url, caption string, replyTo int) (domain.SentMessage, error) {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FileURL(url))
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeHTML
	video.ReplyToMessageID = replyTo
	return t.send(ctx, domain.MethodSendVideo, chatID, video)
}

func (t *Telegram) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return wrapError(domain.MethodDeleteMessage, err)
	}
	return nil
}

func (t *Telegram) send(ctx context.Context, method string, chatID int64, c tgbotapi.Chattable) (domain.SentMessage, error) {
	if err := ctx.Err(); err != nil {
		return domain.SentMessage{}, err
	}
	sent, err := t.api.Send(c)
	if err != nil {
		return domain.SentMessage{}, wrapError(method, err)
	}
	return domain.SentMessage{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// wrapError converts a tgbotapi failure into a domain.TransportError.
// Anything that is not a Bot API error means Telegram could not be reached.
func wrapError(method string, err error) error {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &domain.TransportError{
			Method:      method,
			Code:        apiErr.Code,
			Description: apiErr.Message,
			Err:         err,
		}
	}
	return &domain.TransportError{Method: method, Err: err}
}
