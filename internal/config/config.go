package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the service settings.
type Config struct {
	Port                 string
	ReadHeaderTimeout    time.Duration
	LogLevel             slog.Level
	UnitCostsFile        string
	UnknownChannelPolicy string
	MaxUploadBytes       int64
	AllowedOrigins       []string
}

// Load reads configuration from an optional config file and the environment.
// Env overrides use the LEADBOARD_ prefix (LEADBOARD_PORT, ...).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("read_header_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("unit_costs_file", "")
	v.SetDefault("unknown_channel_policy", "keep")
	v.SetDefault("max_upload_bytes", int64(32<<20))
	v.SetDefault("allowed_origins", []string{"*"})

	v.SetConfigType("yaml")
	if path := os.Getenv("LEADBOARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("LEADBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	to, err := time.ParseDuration(v.GetString("read_header_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("read_header_timeout: %w", err)
	}

	lvl := slog.LevelInfo
	if v.GetString("log_level") == "debug" {
		lvl = slog.LevelDebug
	}

	return Config{
		Port:                 v.GetString("port"),
		ReadHeaderTimeout:    to,
		LogLevel:             lvl,
		UnitCostsFile:        v.GetString("unit_costs_file"),
		UnknownChannelPolicy: v.GetString("unknown_channel_policy"),
		MaxUploadBytes:       v.GetInt64("max_upload_bytes"),
		AllowedOrigins:       v.GetStringSlice("allowed_origins"),
	}, nil
}
