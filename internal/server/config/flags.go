package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-t string   access token validity ("15m", "2h", "3d")
//	-x string   refresh token HMAC secret
//	-r string   refresh token validity
//	-k string   CSRF key
//	-v string   verification code validity
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-x", "-r", "-k", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.AccessTokenValidity, "t", config.AccessTokenValidity, "access token validity (e.g. 15m)")
	fs.StringVar(&config.RefreshTokenSecret, "x", config.RefreshTokenSecret, "refresh token secret")
	fs.StringVar(&config.RefreshTokenValidity, "r", config.RefreshTokenValidity, "refresh token validity (e.g. 3d)")
	fs.StringVar(&config.CSRFSecret, "k", config.CSRFSecret, "CSRF key")
	fs.StringVar(&config.VerificationCodeValidity, "v", config.VerificationCodeValidity, "verification code validity (e.g. 2h)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
