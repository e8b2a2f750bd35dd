package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	API      APIConfig      `yaml:"api" mapstructure:"api"`
	ML       MLConfig       `yaml:"ml" mapstructure:"ml"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// APIConfig holds backend REST API settings.
type APIConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	Token       string  `yaml:"token" mapstructure:"token"`
	RefreshToken string `yaml:"refresh_token" mapstructure:"refresh_token"`
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// MLConfig holds ML prediction service settings.
type MLConfig struct {
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	APIKey        string   `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	FallbackPaths []string `yaml:"fallback_paths" mapstructure:"fallback_paths"`
	MaxAttempts   int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryDelaySecs int     `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
}

// RetryDelay returns the fixed inter-attempt delay as a duration.
func (c MLConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// RegistryConfig configures the invoice registry backend.
type RegistryConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the local session API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CLAIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout_secs", 30)
	v.SetDefault("api.rate_limit", 10)
	v.SetDefault("api.rate_burst", 10)
	v.SetDefault("ml.base_url", "http://localhost:8001")
	v.SetDefault("ml.timeout_secs", 30)
	v.SetDefault("ml.fallback_paths", []string{
		"/ml/models/predict/",
		"/ml/predict/robust/",
		"/api/ml/predict",
	})
	v.SetDefault("ml.max_attempts", 3)
	v.SetDefault("ml.retry_delay_secs", 1)
	v.SetDefault("registry.driver", "sqlite")
	v.SetDefault("registry.dsn", "claims.db")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})
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
