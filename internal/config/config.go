package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	LogLevel      string

	// YAML-каталог ролей, SoD-правил и фреймворков для первичного наполнения БД
	CatalogPath string

	DormantAfterDays           int
	AssessmentWorkers          int
	AssessmentObjectiveTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		CatalogPath:   os.Getenv("CATALOG_PATH"),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.DormantAfterDays, err = intEnv("DORMANT_AFTER_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.AssessmentWorkers, err = intEnv("ASSESSMENT_WORKERS", 4); err != nil {
		return nil, err
	}

	if v := os.Getenv("ASSESSMENT_OBJECTIVE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid ASSESSMENT_OBJECTIVE_TIMEOUT %q", v)
		}
		cfg.AssessmentObjectiveTimeout = d
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}
