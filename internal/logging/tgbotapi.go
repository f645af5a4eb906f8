package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// TGBotAPIAdapter satisfies tgbotapi.BotLogger so the library's own output goes through slog.
type TGBotAPIAdapter struct {
	Logger *slog.Logger
}

func (a *TGBotAPIAdapter) Println(v ...interface{}) {
	a.Logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (a *TGBotAPIAdapter) Printf(format string, v ...interface{}) {
	a.Logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
