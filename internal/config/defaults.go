package config

import "vscobot/internal/provider"

func Defaults() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:              "${BOT_TOKEN}",
			PollTimeoutSeconds: 30,
		},
		Resolver: ResolverConfig{
			Endpoint: provider.DefaultVSCOEndpoint,
		},
		General: GeneralConfig{
			StatusDeleteDelayMs:   3000,
			MaxConcurrentMessages: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Bind:    "127.0.0.1:9090",
			Path:    "/metrics",
		},
	}
}
