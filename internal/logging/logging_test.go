package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeToken = "123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsawq"

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(NewTokenMaskerHandler(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestMaskTokens(t *testing.T) {
	got := MaskTokens("POST https://api.telegram.org/bot" + fakeToken + "/getMe")
	assert.NotContains(t, got, fakeToken)
	assert.Contains(t, got, tokenMask)

	assert.Equal(t, "nothing secret here", MaskTokens("nothing secret here"))
}

func TestTokenMaskerHandler_MessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("token "+fakeToken,
		"url", "https://api.telegram.org/bot"+fakeToken+"/sendMessage",
		"err", errors.New("Post bot"+fakeToken+": timeout"),
		slog.Group("req", slog.String("token", fakeToken)),
	)

	out := buf.String()
	assert.NotContains(t, out, fakeToken)
	assert.Contains(t, out, tokenMask)
}

func TestTokenMaskerHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf).With("token", fakeToken).WithGroup("g")
	logger.Info("hello", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, fakeToken)
	assert.Contains(t, out, "g.k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vscobot.log")
	logger, closer, err := New(Options{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("written to file", "token", fakeToken)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.NotContains(t, string(data), fakeToken)
}

func TestTGBotAPIAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := &TGBotAPIAdapter{Logger: newBufferLogger(&buf)}
	a.Printf("Endpoint: %s", "bot"+fakeToken)
	a.Println("done")

	out := buf.String()
	assert.Contains(t, out, "Endpoint")
	assert.Contains(t, out, "done")
	assert.NotContains(t, out, fakeToken)
}
