package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":5250"`

	// Optional JSON file replacing the built-in city tier table
	CitiesFile string `env:"CITIES_FILE"`

	Storage struct {
		// Backend is one of file, sqlite, redis
		Backend string `env:"STORAGE_BACKEND" envDefault:"file"`

		// Root directory of the JSON documents for the file backend
		DataDir string `env:"DATA_DIR" envDefault:"data"`

		SQLitePath string `env:"SQLITE_PATH" envDefault:"data/catalog.db"`

		RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		RedisPassword string `env:"REDIS_PASSWORD"`
		RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
		RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"apartinvest:"`
	}

	Catalog struct {
		// Canonical source, always required
		Canonical string `env:"CATALOG_CANONICAL" envDefault:"projects"`

		// Generated overlays in precedence order, merged after the canonical source
		Overlays []string `env:"CATALOG_OVERLAYS" envSeparator:"," envDefault:"projects_generated"`

		// Admin-added records, lowest precedence
		Extras string `env:"CATALOG_EXTRAS" envDefault:"projects_extra"`

		// Enrichment overlays merged onto records by slug
		Enrichments []string `env:"CATALOG_ENRICHMENTS" envSeparator:"," envDefault:"projects_enrichment"`
	}

	Auth struct {
		AdminToken  string `env:"ADMIN_TOKEN"`
		IngestToken string `env:"INGEST_TOKEN"`
	}

	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`
	}

	Ingest struct {
		FeedURLs []string `env:"INGEST_FEED_URLS" envSeparator:","`
		Channels []string `env:"INGEST_CHANNELS" envSeparator:","`
		Keywords []string `env:"INGEST_KEYWORDS" envSeparator:"," envDefault:"апарт,апартамент,гостиниц,отель,доходн,недвижимост"`

		// Bound on every outbound fetch
		Timeout time.Duration `env:"INGEST_TIMEOUT" envDefault:"10s"`

		// Outbound requests per second across all fetchers
		RatePerSecond float64 `env:"INGEST_RATE" envDefault:"2"`

		SchedulerEnabled bool          `env:"INGEST_SCHEDULER" envDefault:"false"`
		Interval         time.Duration `env:"INGEST_INTERVAL" envDefault:"1h"`
	}

	// BatchProcessing configuration of the lead notification queue
	BatchProcessing struct {
		// Maximum number of leads waiting for notification
		QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`

		// Number of concurrent notifiers
		ProcessorCount int `env:"NOTIFY_PROCESSOR_COUNT" envDefault:"1"`

		// Maximum number of retries for a failed notification
		MaxRetries int `env:"NOTIFY_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"NOTIFY_RETRY_DELAY" envDefault:"5"`
	}

	CORS struct {
		Origins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Log struct {
		Level      string `env:"LOG_LEVEL" envDefault:"info"`
		File       string `env:"LOG_FILE"`
		MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
		MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
		MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
	}
}

// LoadConfig reads config/env/<APP_ENV>.env when present and then parses the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (*Config, error) {
	if path := envFilePath(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envFilePath() string {
	name := os.Getenv("APP_ENV")
	if name == "" {
		name = "development"
	}
	path := filepath.Join("config", "env", name+".env")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
