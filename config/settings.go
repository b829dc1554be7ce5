package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings are the process-level settings, read from environment variables
// with sensible defaults for local development.
type Settings struct {
	ServerAddr    string `mapstructure:"SERVER_ADDR"`
	MongoURL      string `mapstructure:"MONGO_URL"`
	DatabaseName  string `mapstructure:"DATABASE_NAME"`
	ReferencePath string `mapstructure:"REFERENCE_CONFIG"`
	ModelPath     string `mapstructure:"TRADEOFF_MODEL"`
	BasisURL      string `mapstructure:"BASIS_URL"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	PrettyLogs    bool   `mapstructure:"PRETTY_LOGS"`
}

// LoadSettings reads settings from the environment via viper.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetDefault("SERVER_ADDR", ":9000")
	v.SetDefault("MONGO_URL", "localhost")
	v.SetDefault("DATABASE_NAME", "riskservice")
	v.SetDefault("REFERENCE_CONFIG", "config/cdss_config.json")
	v.SetDefault("TRADEOFF_MODEL", "config/arc_hbr_model.json")
	v.SetDefault("BASIS_URL", "http://localhost:9000/breakdowns")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PRETTY_LOGS", false)
	v.AutomaticEnv()

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	return settings, nil
}
