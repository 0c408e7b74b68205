package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	minScrapeTimeout     = 5 * time.Second
	minExtractionTimeout = 2 * time.Second
	minPromptChars       = 500
)

// Config holds everything the API and the CLI read from the environment.
// Both API keys are optional: a missing key only disables the AI tier.
type Config struct {
	Port      string `env:"PORT"       envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Database DatabaseConfig `envPrefix:"DB_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	BrowserlessAPIKey   string `env:"BROWSERLESS_API_KEY"`
	BrowserlessEndpoint string `env:"BROWSERLESS_ENDPOINT" envDefault:"wss://production-sfo.browserless.io"`

	ScrapeTimeout       time.Duration `env:"SCRAPE_TIMEOUT"        envDefault:"30s"`
	ExtractionTimeout   time.Duration `env:"EXTRACTION_TIMEOUT"    envDefault:"20s"`
	TrackRequestTimeout time.Duration `env:"TRACK_REQUEST_TIMEOUT" envDefault:"300s"`
	MaxPromptChars      int           `env:"MAX_PROMPT_CHARS"      envDefault:"8000"`

	ExtractionCacheTTL time.Duration `env:"EXTRACTION_CACHE_TTL" envDefault:"24h"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"*" envSeparator:","`

	// APIBaseURL is only used by jobtrackctl.
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
}

type DatabaseConfig struct {
	Host        string `env:"HOST"         envDefault:"localhost"`
	Port        int    `env:"PORT"         envDefault:"5432"`
	User        string `env:"USER"         envDefault:"postgres"`
	Password    string `env:"PASSWORD"     envDefault:"password"`
	Name        string `env:"NAME"         envDefault:"jobtracker"`
	SSLMode     string `env:"SSL_MODE"     envDefault:"disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

// DSN renders the libpq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether an extraction cache should be used.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return &cfg, nil
}

// Sanitize clamps values that would make the pipeline misbehave.
func (c *Config) Sanitize() {
	c.GeminiAPIKey = strings.TrimSpace(c.GeminiAPIKey)
	c.BrowserlessAPIKey = strings.TrimSpace(c.BrowserlessAPIKey)
	c.BrowserlessEndpoint = strings.TrimRight(strings.TrimSpace(c.BrowserlessEndpoint), "/?")

	if c.ScrapeTimeout < minScrapeTimeout {
		c.ScrapeTimeout = minScrapeTimeout
	}
	if c.ExtractionTimeout < minExtractionTimeout {
		c.ExtractionTimeout = minExtractionTimeout
	}
	// The request budget has to cover one scrape plus one extraction.
	if floor := c.ScrapeTimeout + c.ExtractionTimeout; c.TrackRequestTimeout < floor {
		c.TrackRequestTimeout = floor
	}
	if c.MaxPromptChars < minPromptChars {
		c.MaxPromptChars = minPromptChars
	}
	if c.ExtractionCacheTTL <= 0 {
		c.ExtractionCacheTTL = 24 * time.Hour
	}
	origins := make([]string, 0, len(c.CORSAllowOrigins))
	for _, o := range c.CORSAllowOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORSAllowOrigins = origins
	if c.Port == "" {
		c.Port = "8080"
	}
}

// AIEnabled reports whether both credentials needed by the AI tier are present.
func (c *Config) AIEnabled() bool {
	return c.GeminiAPIKey != "" && c.BrowserlessAPIKey != ""
}
