package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"vscobot/internal/config"
	"vscobot/internal/logging"
	"vscobot/internal/provider"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

const doctorTimeout = 10 * time.Second

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your vscobot installation",
		Long: `Verifies that the configuration is valid, the bot token is accepted by
Telegram, the resolver service answers and the metrics port is free.
Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.ExpandPath(resolveConfigPath())
			fmt.Printf("vscobot doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config file exists (optional: defaults + BOT_TOKEN also work)
			if _, err := os.Stat(cfgPath); err != nil {
				printWarn("Config file", fmt.Sprintf("not found at %s, using defaults", cfgPath))
				warned++
			} else {
				printPass("Config file", cfgPath)
				passed++
			}

			// 2. Config loads and validates
			cfg, err := config.Load(cfgPath)
			if err != nil {
				printFail("Config validation", err.Error())
				failed++
				fmt.Printf("\nRun 'vscobot init' to create a default configuration.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			printPass("Config validation", "valid")
			passed++

			ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
			defer cancel()

			// 3. Token accepted by Telegram (getMe)
			if name, err := checkToken(cfg.Telegram.Token); err != nil {
				printFail("Telegram token", logging.MaskTokens(err.Error()))
				failed++
			} else {
				printPass("Telegram token", "@"+name)
				passed++
			}

			// 4. Resolver reachable
			resolver := provider.NewVSCOResolver(provider.VSCOResolverConfig{
				Endpoint: cfg.Resolver.Endpoint,
				Timeout:  doctorTimeout,
				Logger:   logger,
			})
			if status, err := resolver.Ping(ctx); err != nil {
				printFail("Resolver", err.Error())
				failed++
			} else if status >= 500 {
				printWarn("Resolver", fmt.Sprintf("%s answered HTTP %d", cfg.Resolver.Endpoint, status))
				warned++
			} else {
				printPass("Resolver", fmt.Sprintf("%s (HTTP %d)", cfg.Resolver.Endpoint, status))
				passed++
			}

			// 5. Metrics port
			if cfg.Metrics.Enabled {
				if err := checkPort(cfg.Metrics.Bind); err != nil {
					printWarn("Metrics bind", fmt.Sprintf("%s may be in use: %v", cfg.Metrics.Bind, err))
					warned++
				} else {
					printPass("Metrics bind", cfg.Metrics.Bind+" available")
					passed++
				}
			}

			// 6. Log file writable
			if cfg.Logging.File != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0o755); err != nil {
					printWarn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
					warned++
				} else {
					printPass("Log file", cfg.Logging.File)
					passed++
				}
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				fmt.Printf("\nPlease fix the failed checks before running vscobot.\n")
				return fmt.Errorf("%d check(s) failed", failed)
			}
			if warned > 0 {
				fmt.Printf("\nvscobot should work but consider fixing the warnings.\n")
			} else {
				fmt.Printf("\nAll checks passed! vscobot is ready to run.\n")
			}
			return nil
		},
	}
}

// checkToken calls getMe and returns the bot's username.
func checkToken(token string) (string, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, provider.SharedHTTPClient(doctorTimeout))
	if err != nil {
		return "", err
	}
	return bot.Self.UserName, nil
}

func checkPort(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
