package config

import (
	"flag"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/flagx"
)

// parseFlags applies the command-line overrides.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g. ":7999")
//	-d string     PostgreSQL DSN
//	-s string     token signing secret
//	-t duration   token lifetime (e.g. "30m")
//	-l duration   token leeway
//	-r string     Redis address for token revocation
//	-e string     environment type
//
// Other arguments are filtered out with flagx.FilterArgs so -c/-config and
// unrelated flags do not trip the parser.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-s", "-t", "-l", "-r", "-e"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenTTL, "t", config.TokenTTL, "token lifetime")
	fs.DurationVar(&config.TokenLeeway, "l", config.TokenLeeway, "token leeway")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment type")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
