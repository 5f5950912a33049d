package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Fuzzy  FuzzyConfig  `mapstructure:"fuzzy"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DataConfig holds dataset and storage settings.
type DataConfig struct {
	Dir              string `mapstructure:"dir"`
	DatabasePath     string `mapstructure:"database_path"`
	APIURL           string `mapstructure:"api_url"`
	UpdateCheckHours int    `mapstructure:"update_check_hours"`
}

// FuzzyConfig holds card-name resolution settings.
type FuzzyConfig struct {
	MatchThreshold int `mapstructure:"match_threshold"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// MILES_ (e.g. MILES_SERVER_PORT, MILES_DATA_DIR).
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.database_path", "./miles.db")
	v.SetDefault("data.api_url", "https://api.askmiles.ai")
	v.SetDefault("data.update_check_hours", 24)
	// Threshold of 85 balances flexibility (e.g. "Amex Platinum" matching
	// "The Platinum Card from American Express") with accuracy.
	v.SetDefault("fuzzy.match_threshold", 85)

	v.SetConfigType("toml")
	v.SetConfigName("miles")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/miles")

	v.SetEnvPrefix("MILES")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.Fuzzy.MatchThreshold < 0 || c.Fuzzy.MatchThreshold > 100 {
		return Config{}, fmt.Errorf("fuzzy.match_threshold must be in [0,100], got %d", c.Fuzzy.MatchThreshold)
	}
	return c, nil
}
