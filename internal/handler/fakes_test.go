package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"vscobot/internal/domain"
)

type sentCall struct {
	Method    string
	ChatID    int64
	Text      string // text for sendMessage, URL for media
	Caption   string
	ParseMode string
	ReplyTo   int
}

// fakeMessenger records every outbound call. errs maps a method name to the
// error that call should return.
type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentCall
	deleted []domain.SentMessage
	errs    map[string]error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, errs: map[string]error{}}
}

func (f *fakeMessenger) record(c sentCall) (domain.SentMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[c.Method]; err != nil {
		return domain.SentMessage{}, err
	}
	f.sent = append(f.sent, c)
	f.nextID++
	return domain.SentMessage{ChatID: c.ChatID, MessageID: f.nextID}, nil
}

func (f *fakeMessenger) SendText(_ context.Context, chatID int64, text, parseMode string, replyTo int) (domain.SentMessage, error) {
	return f.record(sentCall{Method: domain.MethodSendMessage, ChatID: chatID, Text: text, ParseMode: parseMode, ReplyTo: replyTo})
}

func (f *fakeMessenger) SendPhoto(_ context.Context, chatID int64, url, caption string, replyTo int) (domain.SentMessage, error) {
	return f.record(sentCall{Method: domain.MethodSendPhoto, ChatID: chatID, Text: url, Caption: caption, ParseMode: domain.ParseHTML, ReplyTo: replyTo})
}

func (f *fakeMessenger) SendVideo(_ context.Context, chatID int64, url, caption string, replyTo int) (domain.SentMessage, error) {
	return f.record(sentCall{Method: domain.MethodSendVideo, ChatID: chatID, Text: url, Caption: caption, ParseMode: domain.ParseHTML, ReplyTo: replyTo})
}

func (f *fakeMessenger) DeleteMessage(_ context.Context, chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[domain.MethodDeleteMessage]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, domain.SentMessage{ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *fakeMessenger) calls() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.sent...)
}

func (f *fakeMessenger) deletions() []domain.SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SentMessage(nil), f.deleted...)
}

type fakeResolver struct {
	mu     sync.Mutex
	media  *domain.ResolvedMedia
	err    error
	inputs []string
}

func (r *fakeResolver) Resolve(_ context.Context, link string) (*domain.ResolvedMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, link)
	if r.err != nil {
		return nil, r.err
	}
	return r.media, nil
}

func (r *fakeResolver) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.inputs...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
