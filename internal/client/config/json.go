package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// JsonConfig is the intermediate DTO used for reading JSON configuration
// files. After unmarshalling, non-zero fields are copied into the runtime
// Config.
type JsonConfig struct {
	ServerBaseURL  string `json:"server_base_url"`
	RequestTimeout int    `json:"request_timeout_seconds"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no file is loaded.
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

	if c.ServerBaseURL != "" {
		config.ServerBaseURL = c.ServerBaseURL
	}
	if c.RequestTimeout != 0 {
		config.RequestTimeout = time.Duration(c.RequestTimeout) * time.Second
	}
}
