package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file
// in the working directory is loaded first when present; real environment
// variables win over .env entries (godotenv does not overwrite).
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(target *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*target = v
		}
	}

	setString(&config.EndpointAddr, "APP_ADDR")
	setString(&config.GinMode, "GIN_MODE")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.AccessTokenSecret, "AUTH_SECRET")
	setString(&config.AccessTokenValidity, "AUTH_SECRET_EXPIRES_IN")
	setString(&config.RefreshTokenSecret, "AUTH_REFRESH_SECRET")
	setString(&config.RefreshTokenValidity, "AUTH_REFRESH_SECRET_EXPIRES_IN")
	setString(&config.CSRFSecret, "CSRF_SECRET")
	setString(&config.VerificationCodeValidity, "EMAIL_VERIFICATION_EXPIRATION")
	setString(&config.EmailHost, "EMAIL_HOST")
	setString(&config.EmailUser, "EMAIL_USER")
	setString(&config.EmailPassword, "EMAIL_PASS")
	setString(&config.EmailFrom, "EMAIL_FROM")

	if v, ok := os.LookupEnv("EMAIL_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.EmailPort = port
		}
	}
	if v, ok := os.LookupEnv("EMAIL_SECURE"); ok {
		config.EmailSecure = v == "true" || v == "1"
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		config.CORSAllowedOrigins = origins
	}
}
