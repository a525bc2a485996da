package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SourceURL             string        `mapstructure:"source_url"`
	UserAgent             string        `mapstructure:"user_agent"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestRetries        int           `mapstructure:"request_retries"`
	DetailDelayMs         int64         `mapstructure:"detail_delay_ms"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	DetailDelay           time.Duration `mapstructure:"-"`

	ExcludedEmails []string `mapstructure:"excluded_emails"`

	NotifiersFile string `mapstructure:"notifiers_file"`

	StorageType string `mapstructure:"storage_type"`
	StoragePath string `mapstructure:"storage_path"`

	PollIntervalSeconds int64         `mapstructure:"poll_interval"`
	PollInterval        time.Duration `mapstructure:"-"`
	ScheduleCron        string        `mapstructure:"schedule_cron"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "pasantias-monitor")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("source_url", "https://www.derecho.uba.ar/academica/asuntos_estudiantiles/pasantias/ofertas.php")
	v.SetDefault("user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("request_retries", 2)
	v.SetDefault("detail_delay_ms", 500)
	v.SetDefault("excluded_emails", []string{
		"diralumnos@derecho.uba.ar",
		"areageneroest@derecho.uba.ar",
		"posgrado@derecho.uba.ar",
		"biblio@derecho.uba.ar",
		"pasantia@derecho.uba.ar",
	})
	v.SetDefault("notifiers_file", "./configs/notifiers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("storage_path", "./data/ofertas.db")
	v.SetDefault("poll_interval", int64((24*time.Hour)/time.Second))
	v.SetDefault("schedule_cron", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.SourceURL) == "" {
		return nil, fmt.Errorf("source_url must not be empty")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	if cfg.DetailDelayMs < 0 {
		return nil, fmt.Errorf("invalid detail_delay_ms (must not be negative)")
	}
	if cfg.PollIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid poll_interval (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	cfg.DetailDelay = time.Duration(cfg.DetailDelayMs) * time.Millisecond
	cfg.PollInterval = time.Duration(cfg.PollIntervalSeconds) * time.Second

	return &cfg, nil
}
