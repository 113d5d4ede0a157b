package config

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string `env:"HOST" envDefault:"localhost"`
	Port string `env:"PORT" envDefault:"8080"`
	// RW serves everything, RO rejects writes (read replicas for pollers).
	Mode           string   `env:"MODE" envDefault:"RW"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	PollRate       float64  `env:"POLL_RATE" envDefault:"5"`
	PollBurst      int      `env:"POLL_BURST" envDefault:"20"`
}

type Store struct {
	Driver     string `env:"DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"penaltydraw.db"`
}

type Postgres struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"admin"`
	Password string `env:"PASSWORD" envDefault:"shared"`
	DBName   string `env:"NAME" envDefault:"penaltydraw"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

type RedisCache struct {
	Enabled   bool          `env:"ENABLED" envDefault:"false"`
	Host      string        `env:"HOST" envDefault:"redis"`
	Port      string        `env:"PORT" envDefault:"6379"`
	Password  string        `env:"PASSWORD" envDefault:"shared"`
	StatusTTL time.Duration `env:"STATUS_TTL" envDefault:"1s"`
}

type Media struct {
	UpstreamURL   string        `env:"UPSTREAM_URL" envDefault:"http://localhost:9000/videos"`
	ProxyURL      string        `env:"PROXY_URL" envDefault:"http://localhost:8080/api/v1/videos"`
	DrawTimeout   time.Duration `env:"DRAW_TIMEOUT" envDefault:"5m"`
	ProxyTimeout  time.Duration `env:"PROXY_TIMEOUT" envDefault:"30m"`
	BaseVideo     string        `env:"BASE_VIDEO" envDefault:"1"`
	PublicBaseURL string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3000"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"text"`
}

type Config struct {
	HTTP     HTTPServer `envPrefix:"HTTP_"`
	Store    Store      `envPrefix:"STORE_"`
	Postgres Postgres   `envPrefix:"DB_"`
	Redis    RedisCache `envPrefix:"REDIS_"`
	Media    Media      `envPrefix:"MEDIA_"`
	Log      Log        `envPrefix:"LOG_"`
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg, err := Parse()
	if err != nil {
		log.Fatalf("%s %v", logtag, err)
	}

	log.Printf("%s backend config : %s\n", logtag, cfg)
	return cfg
}

// Parse reads the process environment without touching flags or .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.HTTP.Mode {
	case "RW", "RO":
	default:
		return fmt.Errorf("unknown HTTP_MODE %q", c.HTTP.Mode)
	}
	if c.Media.DrawTimeout <= 0 || c.Media.ProxyTimeout <= 0 {
		return fmt.Errorf("media timeouts must be positive")
	}
	return nil
}

func (c Config) String() string {
	masked := c
	masked.Postgres.Password = mask(c.Postgres.Password)
	masked.Redis.Password = mask(c.Redis.Password)
	return fmt.Sprintf("%+v", struct {
		HTTP     HTTPServer
		Store    Store
		Postgres Postgres
		Redis    RedisCache
		Media    Media
		Log      Log
	}(masked))
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
