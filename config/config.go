package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL          string        `envconfig:"DATABASE_URL"           required:"true"`
	HTTPPort             string        `envconfig:"HTTP_PORT"              default:":8080"`
	LogLevel             string        `envconfig:"LOG_LEVEL"              default:"info"`
	RedisAddr            string        `envconfig:"REDIS_ADDR"             default:""`
	CategoryDeletePolicy string        `envconfig:"CATEGORY_DELETE_POLICY" default:"detach"`
	ReportCacheTTL       time.Duration `envconfig:"REPORT_CACHE_TTL"       default:"5m"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, LogLevel=%s, CategoryDeletePolicy=%s",
			config.HTTPPort, config.LogLevel, config.CategoryDeletePolicy)
		if config.RedisAddr != "" {
			logger.Infof("Report cache enabled (redis at %s, ttl %s)", config.RedisAddr, config.ReportCacheTTL)
		} else {
			logger.Info("Report cache disabled (REDIS_ADDR not set)")
		}
	})
	return &config
}
