// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/spf13/viper"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config holds all configuration parameters for the engine
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`

	// Engine defaults
	DefaultLimit     int     `mapstructure:"defaultlimit"`     // breakdown list length
	AnomalyThreshold float64 `mapstructure:"anomalythreshold"` // z-score cutoff
	SiteHost         string  `mapstructure:"sitehost"`         // marks internal referrer traffic

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the engine configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		// Set defaults
		v.SetDefault("appname", "pagepulse")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelInfo))
		v.SetDefault("defaultlimit", 10)
		v.SetDefault("anomalythreshold", 2.0)
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)

		// Bind environment variables
		v.BindEnv("appname", "PAGEPULSE_APP_NAME")
		v.BindEnv("environment", "PAGEPULSE_ENV")
		v.BindEnv("loglevel", "PAGEPULSE_LOG_LEVEL")
		v.BindEnv("defaultlimit", "PAGEPULSE_DEFAULT_LIMIT")
		v.BindEnv("anomalythreshold", "PAGEPULSE_ANOMALY_THRESHOLD")
		v.BindEnv("sitehost", "PAGEPULSE_SITE_HOST")
		v.BindEnv("logsdir", "PAGEPULSE_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "PAGEPULSE_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "PAGEPULSE_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "PAGEPULSE_LOGS_MAX_AGE_IN_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}
	})
	return cfg
}

// validate checks the configuration for errors
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive: %d", c.DefaultLimit)
	}
	if c.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be positive: %g", c.AnomalyThreshold)
	}

	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
