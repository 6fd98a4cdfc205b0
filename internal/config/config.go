package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "wwdcgrab/2.0 (+https://github.com/wwdcgrab/wwdcgrab)"

// DefaultBaseURL is the developer site hosting session pages.
const DefaultBaseURL = "https://developer.apple.com"

type Config struct {
	BaseURL       string `mapstructure:"base_url"`
	ClientTimeout string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent     string `mapstructure:"user_agent"`
	LogLevel      string `mapstructure:"log_level"`
	Retry         struct {
		MaxRetries int    `mapstructure:"max_retries"`
		Backoff    string `mapstructure:"backoff"` // initial backoff duration string
	} `mapstructure:"retry"`
	PageCache struct {
		Size int    `mapstructure:"size"` // Maximum number of pages kept in the LRU cache
		TTL  string `mapstructure:"ttl"`  // Go duration string like "10m", "1h", etc.
	} `mapstructure:"page_cache"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
	initOnce     sync.Once
)

// Init loads the configuration and wires the global logger. It is called once
// from the CLI root command; later calls are no-ops.
func Init() {
	initOnce.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}).With().Timestamp().Logger()

		config, err := LoadConfig()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to load config")
		}

		level := zerolog.InfoLevel // default
		if config.LogLevel != "" {
			if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
				level = parsedLevel
			} else {
				logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
			}
		}

		zerolog.SetGlobalLevel(level)
		logger = logger.Level(level)
		globalConfig = config
	})
}

// SetLogLevel overrides the global log level, e.g. for the --verbose flag.
func SetLogLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.AutomaticEnv()
	viper.SetEnvPrefix("WWDCGRAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("client_timeout", "30s")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("retry.max_retries", 2)
	viper.SetDefault("retry.backoff", "1s")
	viper.SetDefault("page_cache.size", 32)
	viper.SetDefault("page_cache.ttl", "10m")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &config, nil
}

func GetConfig() *Config {
	if globalConfig == nil {
		Init()
	}
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
