// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	SerpAPI SerpAPIConfig `yaml:"serpapi" mapstructure:"serpapi"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Stan    StanConfig    `yaml:"stan" mapstructure:"stan"`
	Social  SocialConfig  `yaml:"social" mapstructure:"social"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SerpAPIConfig holds SerpAPI credentials and tuning.
type SerpAPIConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ResultsPerPage int     `yaml:"results_per_page" mapstructure:"results_per_page"`
}

// CrawlConfig configures the crawl agents.
type CrawlConfig struct {
	Engine             string `yaml:"engine" mapstructure:"engine"`
	Browser            string `yaml:"browser" mapstructure:"browser"`
	MaxResultsPerQuery int    `yaml:"max_results_per_query" mapstructure:"max_results_per_query"`
	MaxResultsPerAgent int    `yaml:"max_results_per_agent" mapstructure:"max_results_per_agent"`
	DelayMinMs         int    `yaml:"delay_min_ms" mapstructure:"delay_min_ms"`
	DelayMaxMs         int    `yaml:"delay_max_ms" mapstructure:"delay_max_ms"`
	QueryTimeoutSecs   int    `yaml:"query_timeout_secs" mapstructure:"query_timeout_secs"`
	RelaxedMatching    bool   `yaml:"relaxed_matching" mapstructure:"relaxed_matching"`
}

// StanConfig configures storefront enrichment.
type StanConfig struct {
	TimeoutSecs  int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxOffers    int `yaml:"max_offers" mapstructure:"max_offers"`
	MaxBatchSize int `yaml:"max_batch_size" mapstructure:"max_batch_size"`
}

// SocialConfig configures social metrics enrichment.
type SocialConfig struct {
	MinFollowerEstimate int64 `yaml:"min_follower_estimate" mapstructure:"min_follower_estimate"`
	MaxConcurrent       int   `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP boundary server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CREATORSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("serpapi.base_url", "https://serpapi.com")
	v.SetDefault("serpapi.rate_per_second", 2)
	v.SetDefault("serpapi.timeout_secs", 20)
	v.SetDefault("serpapi.results_per_page", 20)
	v.SetDefault("crawl.engine", "auto")
	v.SetDefault("crawl.browser", "chromium")
	v.SetDefault("crawl.max_results_per_query", 20)
	v.SetDefault("crawl.max_results_per_agent", 60)
	v.SetDefault("crawl.delay_min_ms", 1200)
	v.SetDefault("crawl.delay_max_ms", 3500)
	v.SetDefault("crawl.query_timeout_secs", 30)
	v.SetDefault("stan.timeout_secs", 25)
	v.SetDefault("stan.max_offers", 12)
	v.SetDefault("stan.max_batch_size", 25)
	v.SetDefault("social.max_concurrent", 4)

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

// Validate checks that the configuration required by a subsystem is present.
func (c *Config) Validate(subsystem string) error {
	switch subsystem {
	case "store":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store.database_url is required")
		}
	case "serpapi":
		if c.SerpAPI.Key == "" {
			return eris.New("config: serpapi.key is required for the serpapi engine")
		}
	}
	return nil
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
