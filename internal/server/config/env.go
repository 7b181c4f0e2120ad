package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv exports the variables in path unless they are already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// parseEnv overlays the variables that are set:
//
//	ENVIRONMENT_TYPE, HTTP_ADDR, DATABASE_DSN, SECRET_KEY, TOKEN_TTL,
//	TOKEN_LEEWAY, BCRYPT_COST, REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ENVIRONMENT_TYPE": &cfg.Environment,
		"HTTP_ADDR":        &cfg.HTTPAddr,
		"DATABASE_DSN":     &cfg.DatabaseDSN,
		"SECRET_KEY":       &cfg.SecretKey,
		"REDIS_ADDR":       &cfg.RedisAddr,
		"REDIS_PASSWORD":   &cfg.RedisPassword,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"TOKEN_TTL":    &cfg.TokenTTL,
		"TOKEN_LEEWAY": &cfg.TokenLeeway,
	}
	for name, dst := range durations {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"BCRYPT_COST": &cfg.BcryptCost,
		"REDIS_DB":    &cfg.RedisDB,
	}
	for name, dst := range ints {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}

	return nil
}
