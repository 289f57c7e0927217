package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API      APIConfig
	UI       UIConfig
	Log      LogConfig
	Database DatabaseConfig
	AMQP     AMQPConfig
	FakeAPI  FakeAPIConfig `mapstructure:"fakeapi"`
}

// APIConfig points the client at the remote REST backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Version string        `mapstructure:"version"`
	Timeout time.Duration `mapstructure:"timeout"`
	PerPage int           `mapstructure:"per_page"`
}

// Endpoint joins base url, version and resource.
func (c APIConfig) Endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.Version == "" {
		return base
	}
	return base + "/" + strings.Trim(c.Version, "/")
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string        `mapstructure:"currency_symbol"`
	DateFormat     string        `mapstructure:"date_format"`
	FormCloseDelay time.Duration `mapstructure:"form_close_delay"`
}

// LogConfig controls the file logger. The terminal belongs to the UI.
type LogConfig struct {
	Path   string
	Level  string
	Format string
}

// DatabaseConfig holds the local sqlite settings.
type DatabaseConfig struct {
	Path string
}

// AMQPConfig enables the cross-process change relay when URL is set.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// FakeAPIConfig configures the in-memory development backend.
type FakeAPIConfig struct {
	Addr string
	Seed string
}

// Load reads configuration from .env, file and env. Env var overrides use prefix MYBUDGET_.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MYBUDGET_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mybudget"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MYBUDGET")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.API.PerPage <= 0 {
		c.API.PerPage = 50
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		state = filepath.Join(home, ".local", "state")
	}

	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.version", "v1")
	v.SetDefault("api.timeout", 15*time.Second)
	v.SetDefault("api.per_page", 50)
	v.SetDefault("ui.currency_symbol", "€")
	v.SetDefault("ui.date_format", "02/01/2006")
	v.SetDefault("ui.form_close_delay", time.Second)
	v.SetDefault("log.path", filepath.Join(state, "mybudget", "mybudget.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "mybudget", "mybudget.db"))
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "mybudget.changes")
	v.SetDefault("fakeapi.addr", ":8080")
	v.SetDefault("fakeapi.seed", "")
}

// Save writes the provided config to disk, creating the config directory if needed.
// Only non-secret preferences live here; the bearer token is kept by the secrets store.
func Save(cfg Config) error {
	path := os.Getenv("MYBUDGET_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "mybudget", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.version", cfg.API.Version)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.per_page", cfg.API.PerPage)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.form_close_delay", cfg.UI.FormCloseDelay.String())
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("database.path", cfg.Database.Path)
	v.Set("amqp.url", cfg.AMQP.URL)
	v.Set("amqp.exchange", cfg.AMQP.Exchange)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
