package util

import (
	"errors"
	"fmt"
	"io/fs"
	"time"
	
	"github.com/spf13/viper"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

const (
	// DeliveryModeDirect pushes from the process that created the notification.
	DeliveryModeDirect = "direct"
	// DeliveryModeChangeFeed pushes whatever the database announces on its change feed.
	DeliveryModeChangeFeed = "changefeed"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AllowedOrigins        []string      `mapstructure:"ALLOWED_ORIGINS"`
	DatabaseDriver        string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL           string        `mapstructure:"DATABASE_URL"`
	HTTPServerAddress     string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	TokenSecretKey        string        `mapstructure:"TOKEN_SECRET_KEY"`
	AuthVerifyURL         string        `mapstructure:"AUTH_VERIFY_URL"`
	RedisServerAddress    string        `mapstructure:"REDIS_SERVER_ADDRESS"`
	DeliveryMode          string        `mapstructure:"DELIVERY_MODE"`
	NotificationRetention time.Duration `mapstructure:"NOTIFICATION_RETENTION"`
	AuthMaxFailedAttempts int64         `mapstructure:"AUTH_MAX_FAILED_ATTEMPTS"`
	AuthFailedWindow      time.Duration `mapstructure:"AUTH_FAILED_WINDOW"`
	InternalAPIKey        string        `mapstructure:"INTERNAL_API_KEY"`
	DiscordBotToken       string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordChannelID      string        `mapstructure:"DISCORD_CHANNEL_ID"`
	FirebaseCredentials   string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: every key can come from the environment.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	
	// Set defaults for non-sensitive config. Every key needs an entry here
	// so that AutomaticEnv can resolve it without a config file.
	v.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})
	v.SetDefault("DATABASE_DRIVER", DatabaseDriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("HTTP_SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("TOKEN_SECRET_KEY", "")
	v.SetDefault("AUTH_VERIFY_URL", "")
	v.SetDefault("REDIS_SERVER_ADDRESS", "")
	v.SetDefault("DELIVERY_MODE", DeliveryModeDirect)
	v.SetDefault("NOTIFICATION_RETENTION", "720h")
	v.SetDefault("AUTH_MAX_FAILED_ATTEMPTS", 5)
	v.SetDefault("AUTH_FAILED_WINDOW", "15m")
	v.SetDefault("INTERNAL_API_KEY", "")
	v.SetDefault("DISCORD_BOT_TOKEN", "")
	v.SetDefault("DISCORD_CHANNEL_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	
	// Prefer environment variables over config file
	v.AutomaticEnv()
	
	// Load config file
	v.SetConfigFile(path)
	if err = v.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return
		}
		err = nil
	}
	
	// Unmarshal config into struct
	err = v.UnmarshalExact(&config)
	if err != nil {
		return
	}
	
	// Validate required configuration
	err = validateConfig(config)
	return
}

func validateConfig(config Config) error {
	if config.DatabaseDriver != DatabaseDriverPostgres && config.DatabaseDriver != DatabaseDriverSQLite {
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q", DatabaseDriverPostgres, DatabaseDriverSQLite)
	}
	if config.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if config.TokenSecretKey == "" && config.AuthVerifyURL == "" {
		return fmt.Errorf("TOKEN_SECRET_KEY or AUTH_VERIFY_URL is required")
	}
	if config.InternalAPIKey == "" {
		return fmt.Errorf("INTERNAL_API_KEY is required")
	}
	
	switch config.DeliveryMode {
	case DeliveryModeDirect:
	case DeliveryModeChangeFeed:
		if config.DatabaseDriver != DatabaseDriverPostgres {
			return fmt.Errorf("DELIVERY_MODE %q requires the %q driver", DeliveryModeChangeFeed, DatabaseDriverPostgres)
		}
	default:
		return fmt.Errorf("DELIVERY_MODE must be %q or %q", DeliveryModeDirect, DeliveryModeChangeFeed)
	}
	
	if config.NotificationRetention < 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must not be negative")
	}
	
	return nil
}
