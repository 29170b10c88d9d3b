// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// DefaultEnvFile is read before the environment when present.
const DefaultEnvFile = ".env"

// Config holds configuration knobs for the HTTP server, the pipeline and its
// upstream services.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gte=0"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`

	PageSize        int `envconfig:"CATALOG_PAGE_SIZE" default:"10"`
	MaxConcurrency  int `envconfig:"UPDATE_MAX_CONCURRENCY" default:"0" validate:"gte=0"`
	RunWorkers      int `envconfig:"RUN_WORKERS" default:"1"`
	RunQueueBuffer  int `envconfig:"RUN_QUEUE_BUFFER" default:"16" validate:"gte=0"`
	RunHistoryLimit int `envconfig:"RUN_HISTORY_LIMIT" default:"50" validate:"gte=0"`

	QueueHighWatermark int `envconfig:"RUN_QUEUE_HIGH_WATERMARK" default:"12" validate:"gte=0"`

	Commerce   Commerce
	Generation Generation
}

// Commerce locates and authenticates against the commerce admin API.
type Commerce struct {
	ShopDomain  string        `envconfig:"SHOP_DOMAIN"`
	AccessToken string        `envconfig:"SHOP_ACCESS_TOKEN"`
	APIVersion  string        `envconfig:"SHOP_API_VERSION" default:"2025-01" validate:"required"`
	Timeout     time.Duration `envconfig:"SHOP_HTTP_TIMEOUT" default:"30s" validate:"gte=0"`
}

// Generation points at an OpenAI compatible text-generation service.
// BaseURL and Model are not validated: blank values fail at call time.
type Generation struct {
	BaseURL string `envconfig:"OPENAI_BASEURL"`
	Model   string `envconfig:"OPENAI_MODEL"`
	APIKey  string `envconfig:"OPENAI_API_KEY"`
}

// Load reads envFile (if it exists) into the environment without overriding
// variables that are already set, then collects configuration with defaults.
// A page size or worker count below one falls back to its default; other
// negative sizes and durations are rejected.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, errors.Wrapf(err, "loading env file %s", envFile)
			}
		}
	}
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, errors.Wrap(err, "processing environment")
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.RunWorkers <= 0 {
		c.RunWorkers = 1
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, errors.Wrap(err, "validating configuration")
	}
	return c, nil
}
