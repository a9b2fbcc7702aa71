// Package config loads bookshelf and catalogd settings from an optional
// YAML file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix namespaces every environment override, e.g. BOOKSHELF_UI_PAGE_SIZE.
const EnvPrefix = "BOOKSHELF"

// BaseURLEnv is accepted as an alias for BOOKSHELF_API_BASE_URL.
const BaseURLEnv = "BOOKS_API_URL"

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

type APIConfig struct {
	// BaseURL is the collection resource, e.g. http://localhost:8080/books.
	// It is not validated.
	BaseURL string `mapstructure:"base_url"`
}

type UIConfig struct {
	PageSize int           `mapstructure:"page_size"`
	ToastTTL time.Duration `mapstructure:"toast_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // console | json
	Output string `mapstructure:"output"` // stdout | stderr | /path/to/file
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Mode   string `mapstructure:"mode"` // debug | release | test
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "")
	v.SetDefault("ui.page_size", 9)
	v.SetDefault("ui.toast_ttl", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stderr")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.db_path", "catalog.db")
	v.SetDefault("server.mode", "release")
}

// Load reads configuration. path names an explicit YAML file and must exist
// when given; otherwise bookshelf.yaml is looked up in . and ./config and
// may be absent. A .env file in the working directory is applied to the
// environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("bookshelf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", BaseURLEnv); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", cfg.UI.PageSize)
	}
	if cfg.UI.ToastTTL <= 0 {
		return fmt.Errorf("ui.toast_ttl must be positive, got %s", cfg.UI.ToastTTL)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format)
	}
	return nil
}

// NewLogger builds a zap logger from cfg.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Development = false

	out := cfg.Output
	if out == "" {
		out = "stderr"
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
