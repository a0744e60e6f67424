package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingConfig is returned when a required setting is not provided
var ErrMissingConfig = errors.New("required configuration is missing")

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	JWT       JWTConfig
	Redis     RedisConfig
	NATS      NATSConfig
	LogLevel  string
	LogFormat string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// JWTConfig holds JWT-specific configuration. An empty Secret disables token issuance.
type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

// RedisConfig holds the user cache configuration. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NATSConfig holds event publishing configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL     string
	Subject string
}

// Load loads configuration from a .env file, an optional config file in path and
// APP_-prefixed environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath("./config")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("port"),
			AllowedOrigins:  splitList(v.GetString("allowed_origins")),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		MongoDB: MongoDBConfig{
			URI:            v.GetString("db_conn_url"),
			Database:       v.GetString("db_name"),
			ConnectTimeout: v.GetDuration("db_connect_timeout"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt_secret"),
			ExpiresIn: v.GetDuration("jwt_expires_in"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
			TTL:      v.GetDuration("cache_ttl"),
		},
		NATS: NATSConfig{
			URL:     v.GetString("nats_url"),
			Subject: v.GetString("nats_subject"),
		},
		LogLevel:  strings.ToLower(v.GetString("log_level")),
		LogFormat: strings.ToLower(v.GetString("log_format")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the settings the process cannot start without are present
func (c *Config) Validate() error {
	if c.MongoDB.URI == "" {
		return fmt.Errorf("%w: APP_DB_CONN_URL", ErrMissingConfig)
	}
	if c.MongoDB.Database == "" {
		return fmt.Errorf("%w: APP_DB_NAME", ErrMissingConfig)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("allowed_origins", "*")
	v.SetDefault("shutdown_timeout", 5*time.Second)
	v.SetDefault("db_connect_timeout", 10*time.Second)
	v.SetDefault("jwt_expires_in", 24*time.Hour)
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", 10*time.Minute)
	v.SetDefault("nats_subject", "users.created")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
