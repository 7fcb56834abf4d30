package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all the configuration for the application.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Session      SessionConfig
	Telegram     TelegramConfig
	Tribute      TributeConfig
	Stripe       StripeConfig
	LemonSqueezy LemonSqueezyConfig
	Supabase     SupabaseConfig
	SMTP         SMTPConfig
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	SiteURL string `mapstructure:"siteurl"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the Redis configuration.
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// SessionConfig holds the signed-cookie session configuration.
type SessionConfig struct {
	Secret string `mapstructure:"secret"`
}

// TelegramConfig holds bot credentials and the membership-check policy.
type TelegramConfig struct {
	BotToken      string `mapstructure:"bottoken"`
	BotUsername   string `mapstructure:"botusername"`
	WebhookSecret string `mapstructure:"webhooksecret"`
	PaidGroupID   int64  `mapstructure:"paidgroupid"`
	// CheckRetries is the number of additional attempts for a live
	// group-membership check after the first one fails. 0 disables retries.
	CheckRetries int `mapstructure:"checkretries"`
}

// TributeConfig holds the subscription platform's shared webhook key.
type TributeConfig struct {
	APIKey string `mapstructure:"apikey"`
}

// StripeConfig holds the payment platform credentials.
type StripeConfig struct {
	SecretKey      string `mapstructure:"secretkey"`
	EndpointSecret string `mapstructure:"endpointsecret"`
}

// LemonSqueezyConfig holds the license provider credentials.
type LemonSqueezyConfig struct {
	APIKey string `mapstructure:"apikey"`
}

// SupabaseConfig holds the external email-auth provider settings.
type SupabaseConfig struct {
	URL            string `mapstructure:"url"`
	JWTSecret      string `mapstructure:"jwtsecret"`
	ServiceRoleKey string `mapstructure:"servicerolekey"`
}

type SMTPConfig struct {
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
	Username string `mapstructure:"username"`
	Port     int    `mapstructure:"port"`
	Host     string `mapstructure:"host"`
}

// IsProduction reports whether the server runs with production cookie policy.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Load creates a new Config object from environment variables.
func Load() *Config {
	// --- Set up Viper ---
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Load .env into process environment for BindEnv to work with file-based envs
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ godotenv could not load .env: %v", err)
	}

	// Bind structured keys to environment variables
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.siteurl", "SITE_URL")
	_ = viper.BindEnv("database.url", "DATABASE_URL")
	_ = viper.BindEnv("redis.url", "REDIS_URL")
	_ = viper.BindEnv("session.secret", "SESSION_SECRET")
	_ = viper.BindEnv("telegram.bottoken", "TELEGRAM_BOT_TOKEN")
	_ = viper.BindEnv("telegram.botusername", "TELEGRAM_BOT_USERNAME")
	_ = viper.BindEnv("telegram.webhooksecret", "TELEGRAM_WEBHOOK_SECRET")
	_ = viper.BindEnv("telegram.paidgroupid", "TELEGRAM_PAID_GROUP_ID")
	_ = viper.BindEnv("telegram.checkretries", "TELEGRAM_CHECK_RETRIES")
	_ = viper.BindEnv("tribute.apikey", "TRIBUTE_API_KEY")
	_ = viper.BindEnv("stripe.secretkey", "STRIPE_SECRET_KEY")
	_ = viper.BindEnv("stripe.endpointsecret", "STRIPE_WEBHOOK_SECRET")
	_ = viper.BindEnv("lemonsqueezy.apikey", "LEMON_SQUEEZY_API_KEY")
	_ = viper.BindEnv("supabase.url", "SUPABASE_URL")
	_ = viper.BindEnv("supabase.jwtsecret", "SUPABASE_JWT_SECRET")
	_ = viper.BindEnv("supabase.servicerolekey", "SUPABASE_SERVICE_ROLE_KEY")
	_ = viper.BindEnv("smtp.from", "SMTP_FROM")
	_ = viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	_ = viper.BindEnv("smtp.username", "SMTP_USERNAME")
	_ = viper.BindEnv("smtp.port", "SMTP_PORT")
	_ = viper.BindEnv("smtp.host", "SMTP_HOST")

	// --- Read Configuration ---
	if err := viper.ReadInConfig(); err != nil {
		// Only log a warning if the .env file is not found.
		// We can still proceed if all config is set via environment variables.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("❌ Error reading config file: %s", err)
		} else {
			log.Printf("⚠️ .env file not found, relying on environment variables")
		}
	}

	// --- Unmarshal configuration into our struct ---
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	// --- Set default values ---
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.Env == "" {
		cfg.Server.Env = "development"
	}
	if cfg.Server.SiteURL == "" {
		cfg.Server.SiteURL = "http://localhost:" + cfg.Server.Port
	}

	log.Println("✅ Configuration loaded successfully")
	return &cfg
}
