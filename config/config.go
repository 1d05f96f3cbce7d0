package config

import (
	"fmt"
	"log"
	"os"
	"pidroid/model"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads the configuration from environment variables and the optional
// data/pidroid.yaml settings file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	webhookURL := os.Getenv("LOG_WEBHOOK_URL")
	if webhookURL == "" {
		log.Println("Warning: LOG_WEBHOOK_URL not set, operational logging will be disabled")
	}

	v := viper.New()
	v.SetConfigFile("data/pidroid.yaml")
	v.SetDefault("database_path", "data/pidroid.db")
	v.SetDefault("reconcile_interval", "5s")
	v.SetDefault("heartbeat_interval", "30m")
	v.SetDefault("warning_expiry", "2160h") // 90 days

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		log.Println("Info: settings file not found, using defaults")
	}

	cfg := &model.Config{
		BotToken:          token,
		LogWebhookURL:     webhookURL,
		DatabasePath:      v.GetString("database_path"),
		ReconcileInterval: v.GetDuration("reconcile_interval"),
		HeartbeatInterval: v.GetDuration("heartbeat_interval"),
		WarningExpiry:     v.GetDuration("warning_expiry"),
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = 5 * time.Second
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Minute
	}
	return cfg, nil
}
