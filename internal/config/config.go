// Package config содержит логику чтения конфигурации сервиса.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Значения по умолчанию для шаблонов валидации покупателя. Сами шаблоны —
// внешняя конфигурация, движок проверок их не интерпретирует.
const (
	defaultEmailRegexp   = `^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
	defaultContactRegexp = `^\+[0-9]{1,3}[0-9]{10}$`
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress    string        `env:"RUN_ADDRESS"`
	DatabaseURI   string        `env:"DATABASE_URI"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`
	EmailRegexp   string        `env:"EMAIL_REGEXP"`
	ContactRegexp string        `env:"CONTACT_REGEXP"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envSweepInterval := cfg.SweepInterval

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.DurationVar(&cfg.SweepInterval, "i", time.Minute, "restock sweep interval")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envSweepInterval != 0 {
		cfg.SweepInterval = envSweepInterval
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.EmailRegexp == "" {
		cfg.EmailRegexp = defaultEmailRegexp
	}
	if cfg.ContactRegexp == "" {
		cfg.ContactRegexp = defaultContactRegexp
	}

	return cfg, nil
}
