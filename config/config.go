package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	MaxStayNights     int    `mapstructure:"MAX_STAY_NIGHTS"`
	// Proxies whose X-Forwarded-For is trusted for the client IP. Empty trusts none.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Admission locking: "memory" for a single instance, "redis" when
	// several instances share the same database.
	LockBackend string        `mapstructure:"LOCK_BACKEND"`
	LockTTL     time.Duration `mapstructure:"LOCK_TTL"`
	LockWait    time.Duration `mapstructure:"LOCK_WAIT"`

	// Stripe settlement. Payments settle offline when StripeKey is empty.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeCurrency      string `mapstructure:"STRIPE_CURRENCY"`
	StripePaymentMethod string `mapstructure:"STRIPE_PAYMENT_METHOD"`

	// Reservation lifecycle events.
	RabbitMQURL    string `mapstructure:"RABBITMQ_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`

	// Cron spec for completing stays whose checkout has elapsed.
	CompletionSchedule string `mapstructure:"COMPLETION_SCHEDULE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("MAX_STAY_NIGHTS", 365)
	viper.SetDefault("TRUSTED_PROXIES", []string{})
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	viper.SetDefault("DATABASE_NAME", "staybook")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_LOCK_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("LOCK_BACKEND", "memory")
	viper.SetDefault("LOCK_TTL", 10*time.Second)
	viper.SetDefault("LOCK_WAIT", 3*time.Second)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_CURRENCY", "usd")
	viper.SetDefault("STRIPE_PAYMENT_METHOD", "pm_card_visa")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("EVENTS_EXCHANGE", "reservations")
	viper.SetDefault("COMPLETION_SCHEDULE", "@every 15m")
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
