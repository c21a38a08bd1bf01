package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken        string       `yaml:"discord_token"`
	Owner               string       `yaml:"owner"`
	DataDir             string       `yaml:"data_dir"`
	LogLevel            string       `yaml:"log_level"`
	LogChannelID        string       `yaml:"log_channel_id"`
	UsageLogPath        string       `yaml:"usage_log_path"`
	AnnounceChannelName string       `yaml:"announce_channel_name"`
	Server              ServerConfig `yaml:"server"`
	Guard               GuardConfig  `yaml:"guard"`
	Colors              EmbedColors  `yaml:"embed_colors"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type GuardConfig struct {
	Enabled           bool `yaml:"enabled"`
	MinAccountAgeDays int  `yaml:"min_account_age_days"`
}

type EmbedColors struct {
	Info    int `yaml:"info"`
	Success int `yaml:"success"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:             "data",
		LogLevel:            "info",
		UsageLogPath:        "logs/usage.log",
		AnnounceChannelName: "aurora-bot-updates",
		Server:              ServerConfig{Enabled: false, Addr: ":8080"},
		Guard:               GuardConfig{Enabled: true, MinAccountAgeDays: 7},
		Colors: EmbedColors{
			Info:    0x3B82F6,
			Success: 0x22C55E,
			Warning: 0xF59E0B,
			Error:   0xEF4444,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.Owner = envString("OWNER", cfg.Owner)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogChannelID = envString("LOG_CHANNEL_ID", cfg.LogChannelID)
	cfg.UsageLogPath = envString("USAGE_LOG_PATH", cfg.UsageLogPath)
	cfg.AnnounceChannelName = envString("ANNOUNCE_CHANNEL_NAME", cfg.AnnounceChannelName)
	cfg.Server.Enabled = envBool("SERVER_ENABLED", cfg.Server.Enabled)
	cfg.Server.Addr = envString("SERVER_ADDR", cfg.Server.Addr)
	cfg.Guard.Enabled = envBool("GUARD_ENABLED", cfg.Guard.Enabled)
	cfg.Guard.MinAccountAgeDays = envInt("GUARD_MIN_ACCOUNT_AGE_DAYS", cfg.Guard.MinAccountAgeDays)
	cfg.Colors.Info = envInt("EMBED_COLOR_INFO", cfg.Colors.Info)
	cfg.Colors.Success = envInt("EMBED_COLOR_SUCCESS", cfg.Colors.Success)
	cfg.Colors.Warning = envInt("EMBED_COLOR_WARNING", cfg.Colors.Warning)
	cfg.Colors.Error = envInt("EMBED_COLOR_ERROR", cfg.Colors.Error)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
