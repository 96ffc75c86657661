package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the application configuration structure
type Config struct {
	Environment    string        `default:"dev"`
	Username       string
	Password       string
	BaseURL        string        `envconfig:"base_url" default:"https://web.spaggiari.eu"`
	TokenFile      string        `split_words:"true" default:"phpsessid.token"`
	DownloadDir    string        `split_words:"true" default:"download"`
	RequestTimeout time.Duration `split_words:"true" default:"30s"`
}

// LoadFromEnv loads a new configuration structure using environment variables and an optional .env file
func LoadFromEnv() (*Config, error) {
	// Load a .env file if it exists
	_ = godotenv.Overload()

	// Load a new configuration structure using environment variables
	config := new(Config)
	if err := envconfig.Process("spaggiari", config); err != nil {
		return nil, err
	}
	return config, nil
}

// IsEnvProduction returns whether the application runs in production mode
func (config *Config) IsEnvProduction() bool {
	return config.Environment == "prod" || config.Environment == "production"
}
