// Package config loads qfilter settings from an optional config file,
// QFILTER_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bi0dread/qfilter"
	"github.com/bi0dread/qfilter/internal/logger"
)

// EnvPrefix is prepended to every environment variable, e.g.
// QFILTER_PAGE_MAX_PAGE_SIZE.
const EnvPrefix = "QFILTER"

type Config struct {
	Page   qfilter.PageDefaults `mapstructure:"page"`
	Log    logger.Config        `mapstructure:"log"`
	Server ServerConfig         `mapstructure:"server"`
	Store  StoreConfig          `mapstructure:"store"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig selects the backing store of the movie catalogue.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // memory, sqlite, mongo, redis
	DSN      string `mapstructure:"dsn"`
	Database string `mapstructure:"database"`
	Index    string `mapstructure:"index"`
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"page-size":     "page.default_page_size",
	"max-page-size": "page.max_page_size",
	"order-field":   "page.default_order_field",
	"log-level":     "log.level",
	"log-format":    "log.format",
	"addr":          "server.addr",
	"store":         "store.driver",
	"dsn":           "store.dsn",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("page.default_page_size", 20)
	v.SetDefault("page.max_page_size", 100)
	v.SetDefault("page.default_order_field", "Title")
	v.SetDefault("log.level", "INFO")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "file:movies.db?cache=shared")
	v.SetDefault("store.database", "qfilter")
	v.SetDefault("store.index", "idx:movies")
}

// Load reads configuration. path may be empty; flags may be nil. Flags that
// were set explicitly override the environment, which overrides the file.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Page.MaxPageSize < 1 || cfg.Page.DefaultPageSize < 1 {
		return nil, fmt.Errorf("page sizes must be positive (default %d, max %d)",
			cfg.Page.DefaultPageSize, cfg.Page.MaxPageSize)
	}
	return &cfg, nil
}

// RegisterFlags adds the flags Load understands to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("page-size", 20, "default page size")
	fs.Int("max-page-size", 100, "maximum page size")
	fs.String("order-field", "Title", "default order field")
	fs.String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.String("addr", ":8080", "listen address")
	fs.String("store", "memory", "store driver (memory, sqlite, mongo, redis)")
	fs.String("dsn", "file:movies.db?cache=shared", "store connection string")
}
