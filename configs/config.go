package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type R2 struct {
	AccountID  string `env:"ACCOUNT_ID"`
	AccessKey  string `env:"ACCESS_KEY"`
	SecretKey  string `env:"SECRET_KEY"`
	BucketName string `env:"BUCKET_NAME"`
	PublicURL  string `env:"PUBLIC_URL"`
}

// Enabled reports whether generated images go to the bucket instead of disk.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != ""
}

type OpenAI struct {
	APIKey          string        `env:"API_KEY"`
	BaseURL         string        `env:"BASE_URL"`
	ChatModel       string        `env:"CHAT_MODEL" envDefault:"gpt-4"`
	ImageModel      string        `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ImagesPerMinute int           `env:"IMAGES_PER_MINUTE" envDefault:"5"`
}

type WordPress struct {
	URL               string        `env:"URL" envDefault:"https://www.kleurplatenparadijs.nl"`
	Username          string        `env:"USERNAME"`
	Password          string        `env:"PASSWORD"`
	JWTToken          string        `env:"JWT_TOKEN"`
	DefaultCategoryID int64         `env:"DEFAULT_CATEGORY_ID" envDefault:"1"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type Config struct {
	Port               string    `env:"PORT" envDefault:"3001"`
	DatabaseDriver     string    `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	PostgresURI        string    `env:"POSTGRES_URI"`
	SQLitePath         string    `env:"DB_PATH" envDefault:"./data/coloring.db"`
	RedisURI           string    `env:"REDIS_URI"`
	FrontendURL        string    `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	SecretKey          string    `env:"SECRET_KEY"`
	APIKey             string    `env:"API_KEY"`
	CookieName         string    `env:"COOKIE_NAME" envDefault:"colorpress_session"`
	MockMode           string    `env:"MOCK_MODE"`
	ImagesDir          string    `env:"IMAGES_DIR" envDefault:"./data/images"`
	ImageGrayscale     bool      `env:"IMAGE_GRAYSCALE" envDefault:"true"`
	DefaultPublishHour int       `env:"DEFAULT_PUBLISH_HOUR" envDefault:"8"`
	QueueConcurrency   int       `env:"QUEUE_CONCURRENCY" envDefault:"4"`
	OpenAI             OpenAI    `envPrefix:"OPENAI_"`
	WordPress          WordPress `envPrefix:"WORDPRESS_"`
	R2                 R2        `envPrefix:"R2_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.DefaultPublishHour < 0 || cfg.DefaultPublishHour > 23 {
		cfg.DefaultPublishHour = 8
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		if cfg.PostgresURI == "" {
			return nil, fmt.Errorf("POSTGRES_URI is required when DATABASE_DRIVER=postgres")
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	return cfg, nil
}

// UseMock decides whether the AI collaborators answer from canned data.
// An explicit MOCK_MODE wins; otherwise a missing API key means mock.
func (c *Config) UseMock() bool {
	switch c.MockMode {
	case "true":
		return true
	case "false":
		return false
	}
	return c.OpenAI.APIKey == ""
}

// AuthEnabled is false when neither a signing secret nor an operator key is set.
func (c *Config) AuthEnabled() bool {
	return c.SecretKey != "" || c.APIKey != ""
}

func (c *Config) DSN() string {
	if c.DatabaseDriver == "postgres" {
		return c.PostgresURI
	}
	return c.SQLitePath
}
