package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	// DataDir is the directory day files are written to.
	DataDir string
	// DBPath is the SQLite file backing the catalog and the mutation log.
	DBPath string

	// GeminiAPIKey enables the day-suggestion feature when set.
	GeminiAPIKey string

	// Telegram config (optional for the CLI, required for the bot).
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables,
// applying defaults for the local paths.
func NewFromEnv() (*Config, error) {
	dataDir := os.Getenv("NUTRIJOURNAL_DATA_DIR")
	if dataDir == "" {
		dataDir = "data/days"
	}

	dbPath := os.Getenv("NUTRIJOURNAL_DB_PATH")
	if dbPath == "" {
		dbPath = "data/nutrijournal.db"
	}

	cfg := &Config{
		DataDir:            dataDir,
		DBPath:             dbPath,
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL: os.Getenv("TELEGRAM_WEBHOOK_URL"),
	}

	if raw := os.Getenv("TELEGRAM_ALLOW_USER_ID"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_ID entry %q: %w", part, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}

	return cfg, nil
}

// RequireTelegram validates the fields the bot cannot run without.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}
