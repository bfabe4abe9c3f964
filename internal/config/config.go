package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Session   SessionConfig   `mapstructure:"session"`
	OIDC      OIDCConfig      `mapstructure:"oidc"`
	Log       LogConfig       `mapstructure:"log"`
	Mail      MailConfig      `mapstructure:"mail"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"baseURL"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver     string `mapstructure:"driver"` // "mysql", "postgres" or "sqlite3"
	DSN        string `mapstructure:"dsn"`
	Migrations string `mapstructure:"migrations"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	Lifetime   int    `mapstructure:"lifetime"` // hours
	CookieName string `mapstructure:"cookieName"`
}

// OIDCConfig holds OIDC client configuration. Single sign-on is disabled
// when IssuerURL is empty.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// Enabled reports whether single sign-on is configured.
func (c OIDCConfig) Enabled() bool {
	return c.IssuerURL != ""
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// MailConfig holds outgoing email configuration.
type MailConfig struct {
	Backend       string         `mapstructure:"backend"` // "console", "smtp" or "sendgrid"
	From          string         `mapstructure:"from"`
	Operator      string         `mapstructure:"operator"`
	RetryInterval int            `mapstructure:"retryInterval"` // minutes, 0 disables
	SMTP          SMTPConfig     `mapstructure:"smtp"`
	SendGrid      SendGridConfig `mapstructure:"sendgrid"`
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey string `mapstructure:"apiKey"`
}

// StorageConfig selects where uploaded course images are kept.
type StorageConfig struct {
	Backend string      `mapstructure:"backend"` // "file" or "minio"
	Path    string      `mapstructure:"path"`
	Minio   MinioConfig `mapstructure:"minio"`
}

// MinioConfig holds S3-compatible object storage settings.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"useSSL"`
}

// RedisConfig holds the Redis connection used by the rate limiter.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
}

// RateLimitConfig holds per-minute quotas for the throttled form posts.
type RateLimitConfig struct {
	LoginPerMinute   int `mapstructure:"loginPerMinute"`
	SignupPerMinute  int `mapstructure:"signupPerMinute"`
	ContactPerMinute int `mapstructure:"contactPerMinute"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.baseURL", "http://localhost:8080")
	viper.SetDefault("db.driver", "sqlite3")
	viper.SetDefault("db.dsn", "file:elearn.db?_foreign_keys=on")
	viper.SetDefault("db.migrations", "migrations")
	viper.SetDefault("session.lifetime", 24)
	viper.SetDefault("session.cookieName", "elearn_session")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("mail.backend", "console")
	viper.SetDefault("mail.from", "no-reply@localhost")
	viper.SetDefault("mail.operator", "operator@localhost")
	viper.SetDefault("mail.retryInterval", 15)
	viper.SetDefault("mail.smtp.port", 587)
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.path", "media")
	viper.SetDefault("storage.minio.bucket", "course-images")
	viper.SetDefault("ratelimit.loginPerMinute", 10)
	viper.SetDefault("ratelimit.signupPerMinute", 5)
	viper.SetDefault("ratelimit.contactPerMinute", 5)

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-elearn-app/")
	viper.AddConfigPath("$HOME/.go-elearn-app")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("ELEARN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
