package main

import (
	"fmt"
	"os"
	"time"

	"go-chi-calculator/internal/session"
)

// config is read from the environment after .env has been loaded.
type config struct {
	Addr          string
	SessionTTL    time.Duration
	SweepInterval time.Duration
	MemoryPath    string
}

func loadConfig() (config, error) {
	cfg := config{
		Addr:       getenv("HTTP_ADDR", ":8080"),
		SessionTTL: session.DefaultTTL,
		MemoryPath: os.Getenv("CALC_MEMORY_PATH"),
	}

	if s := os.Getenv("CALC_SESSION_TTL"); s != "" {
		ttl, err := time.ParseDuration(s)
		if err != nil {
			return cfg, fmt.Errorf("parse CALC_SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return cfg, fmt.Errorf("CALC_SESSION_TTL must be positive, got %s", ttl)
		}
		cfg.SessionTTL = ttl
	}

	cfg.SweepInterval = cfg.SessionTTL / 4
	if cfg.SweepInterval < time.Second {
		cfg.SweepInterval = time.Second
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
