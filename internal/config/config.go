package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Redis       RedisConfig       `mapstructure:"redis"`
	ObjectStore ObjectStoreConfig `mapstructure:"object_store"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	// SeedTestUsers provisions the fixture accounts on startup; never
	// enable outside development.
	SeedTestUsers bool `mapstructure:"seed_test_users"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	RateLimitRPS   int `mapstructure:"rate_limit_rps"`
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpiryMinutes int    `mapstructure:"expiry_minutes"`
}

// Expiry returns the configured token TTL.
func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type ObjectStoreConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Gateway   string `mapstructure:"gateway"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// Notify receives the appointment reminder digests.
	Notify string `mapstructure:"notify"`
}

// secrets are the values that must never live in the config file. They
// overlay whatever the file provided.
type secrets struct {
	JWTSecret            string `envconfig:"JWT_SECRET"`
	DatabasePassword     string `envconfig:"DATABASE_PASSWORD"`
	ObjectStoreAccessKey string `envconfig:"OBJECT_STORE_ACCESS_KEY"`
	ObjectStoreSecretKey string `envconfig:"OBJECT_STORE_SECRET_KEY"`
	SMTPPassword         string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeout_seconds", 30)
	viper.SetDefault("server.rate_limit_rps", 100)
	viper.SetDefault("server.rate_limit_burst", 200)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_minutes", 60)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("clinic", &sec); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if sec.JWTSecret != "" {
		cfg.JWT.Secret = sec.JWTSecret
	}
	if sec.DatabasePassword != "" {
		cfg.Database.Password = sec.DatabasePassword
	}
	if sec.ObjectStoreAccessKey != "" {
		cfg.ObjectStore.AccessKey = sec.ObjectStoreAccessKey
	}
	if sec.ObjectStoreSecretKey != "" {
		cfg.ObjectStore.SecretKey = sec.ObjectStoreSecretKey
	}
	if sec.SMTPPassword != "" {
		cfg.SMTP.Password = sec.SMTPPassword
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not configured")
	}

	return &cfg, nil
}
