package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, non-empty fields are copied
// into the runtime Config.
type JsonConfig struct {
	EndpointAddr             string   `json:"endpoint_addr"`
	GinMode                  string   `json:"gin_mode"`
	DatabaseDSN              string   `json:"database_dsn"`
	AccessTokenSecret        string   `json:"access_token_secret"`
	AccessTokenValidity      string   `json:"access_token_validity"`
	RefreshTokenSecret       string   `json:"refresh_token_secret"`
	RefreshTokenValidity     string   `json:"refresh_token_validity"`
	CSRFSecret               string   `json:"csrf_secret"`
	VerificationCodeValidity string   `json:"verification_code_validity"`
	CORSAllowedOrigins       []string `json:"cors_allowed_origins"`
	EmailHost                string   `json:"email_host"`
	EmailPort                int      `json:"email_port"`
	EmailSecure              *bool    `json:"email_secure"`
	EmailUser                string   `json:"email_user"`
	EmailPassword            string   `json:"email_password"`
	EmailFrom                string   `json:"email_from"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no file is loaded. An unreadable or invalid
// file panics, the same as a malformed flag would.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay := func(target *string, value string) {
		if value != "" {
			*target = value
		}
	}

	overlay(&config.EndpointAddr, c.EndpointAddr)
	overlay(&config.GinMode, c.GinMode)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.AccessTokenSecret, c.AccessTokenSecret)
	overlay(&config.AccessTokenValidity, c.AccessTokenValidity)
	overlay(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	overlay(&config.RefreshTokenValidity, c.RefreshTokenValidity)
	overlay(&config.CSRFSecret, c.CSRFSecret)
	overlay(&config.VerificationCodeValidity, c.VerificationCodeValidity)
	overlay(&config.EmailHost, c.EmailHost)
	overlay(&config.EmailUser, c.EmailUser)
	overlay(&config.EmailPassword, c.EmailPassword)
	overlay(&config.EmailFrom, c.EmailFrom)

	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.EmailPort != 0 {
		config.EmailPort = c.EmailPort
	}
	if c.EmailSecure != nil {
		config.EmailSecure = *c.EmailSecure
	}
}
