package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"

	"github.com/mahmoudd2003/list/internal/apperr"
)

// Config holds the full application configuration.
type Config struct {
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	WordPress WordPressConfig `yaml:"wordpress" mapstructure:"wordpress"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Presets   PresetsConfig   `yaml:"presets" mapstructure:"presets"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Language    string  `yaml:"language" mapstructure:"language"`
}

// Timeout returns the per-request timeout.
func (c PlacesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// WordPressConfig holds the publishing site and its application password.
type WordPressConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	User        string `yaml:"user" mapstructure:"user"`
	AppPassword string `yaml:"app_password" mapstructure:"app_password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// Timeout returns the per-request timeout.
func (c WordPressConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// PipelineConfig configures search and enrichment.
type PipelineConfig struct {
	MinReviews     int  `yaml:"min_reviews" mapstructure:"min_reviews"`
	MaxResults     int  `yaml:"max_results" mapstructure:"max_results"`
	PartialResults bool `yaml:"partial_results" mapstructure:"partial_results"`
}

// PresetsConfig points at an optional preset table overriding the built-in one.
type PresetsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// StoreConfig selects the run history backend. An empty driver disables it.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// Enabled reports whether run history is configured.
func (c StoreConfig) Enabled() bool {
	return c.Driver != ""
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment values win over the file; both win over defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LISTGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key is registered so AutomaticEnv can see it.
	v.SetDefault("places.api_key", "")
	v.SetDefault("places.base_url", "")
	v.SetDefault("places.timeout_secs", 30)
	v.SetDefault("places.rate_limit", 10.0)
	v.SetDefault("places.language", "ar")
	v.SetDefault("wordpress.base_url", "")
	v.SetDefault("wordpress.user", "")
	v.SetDefault("wordpress.app_password", "")
	v.SetDefault("wordpress.timeout_secs", 60)
	v.SetDefault("pipeline.min_reviews", 200)
	v.SetDefault("pipeline.max_results", 15)
	v.SetDefault("pipeline.partial_results", false)
	v.SetDefault("presets.file", "")
	v.SetDefault("store.driver", "")
	v.SetDefault("store.database_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Modes: "fetch",
// "publish", "serve" and "offline" (render, presets). Every problem found
// is reported in one ConfigError.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "fetch":
		problems = append(problems, c.placesProblems()...)
	case "publish":
		problems = append(problems, c.wordpressProblems()...)
	case "serve":
		problems = append(problems, c.placesProblems()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be between 1 and 65535")
		}
	case "offline":
	default:
		return apperr.NewConfigError("mode", "unknown mode %q", mode)
	}

	if c.Pipeline.MinReviews < 0 {
		problems = append(problems, "pipeline.min_reviews must be >= 0")
	}
	if c.Pipeline.MaxResults < 1 || c.Pipeline.MaxResults > 20 {
		problems = append(problems, "pipeline.max_results must be between 1 and 20")
	}

	switch c.Store.Driver {
	case "", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.Store.DatabaseURL) == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	if len(problems) > 0 {
		return apperr.NewConfigError("", "%s", strings.Join(problems, "; "))
	}
	return nil
}

// HasWordPress reports whether all publishing credentials are set.
func (c *Config) HasWordPress() bool {
	return len(c.wordpressProblems()) == 0
}

func (c *Config) placesProblems() []string {
	var problems []string
	if strings.TrimSpace(c.Places.APIKey) == "" {
		problems = append(problems, "places.api_key is required")
	}
	if c.Places.TimeoutSecs <= 0 {
		problems = append(problems, "places.timeout_secs must be > 0")
	}
	if c.Places.RateLimit < 0 {
		problems = append(problems, "places.rate_limit must be >= 0")
	}
	if _, err := language.Parse(c.Places.Language); err != nil {
		problems = append(problems, "places.language is not a valid language tag")
	}
	return problems
}

func (c *Config) wordpressProblems() []string {
	var problems []string
	if strings.TrimSpace(c.WordPress.BaseURL) == "" {
		problems = append(problems, "wordpress.base_url is required")
	}
	if strings.TrimSpace(c.WordPress.User) == "" {
		problems = append(problems, "wordpress.user is required")
	}
	if strings.TrimSpace(c.WordPress.AppPassword) == "" {
		problems = append(problems, "wordpress.app_password is required")
	}
	if c.WordPress.TimeoutSecs <= 0 {
		problems = append(problems, "wordpress.timeout_secs must be > 0")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
