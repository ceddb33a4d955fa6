package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultSecret = "change-me-in-production-32bytes!"

type Config struct {
	Port          int
	DatabaseURL   string
	SessionSecret string
	SessionMaxAge int
	SessionSecure bool
	CredentialKey string
	WebDir        string
	LogLevel      string
	LogFormat     string

	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	DiscordAPIBase      string

	PnWAPIKey  string
	PnWAPIURL  string
	AllianceID int64
	AdminRanks []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:          getEnvInt("LOTUS_PORT", 5000),
		DatabaseURL:   getEnvString("DATABASE_URL", "sqlite://./data/lotus.db"),
		SessionSecret: getEnvString("SECRET_KEY", defaultSecret),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 7*86400),
		SessionSecure: getEnvBool("SESSION_SECURE", false),
		CredentialKey: getEnvString("CREDENTIAL_KEY", ""),
		WebDir:        getEnvString("LOTUS_WEB_DIR", ""),
		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),

		DiscordClientID:     getEnvString("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnvString("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:  getEnvString("DISCORD_REDIRECT_URI", "http://localhost:5000/callback"),
		DiscordAPIBase:      getEnvString("DISCORD_API_BASE", "https://discord.com/api/v10"),

		PnWAPIKey:  getEnvString("PNW_API_KEY", ""),
		PnWAPIURL:  getEnvString("PNW_API_URL", "https://api.politicsandwar.com/graphql"),
		AllianceID: getEnvInt64("ALLIANCE_ID", 0),
		AdminRanks: getEnvList("ADMIN_RANKS", []string{"Bushido", "Daimyo", "Shogun"}),
	}
}

// Warnings lists settings that work but should not reach production.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.SessionSecret == defaultSecret {
		warnings = append(warnings, "SECRET_KEY is the built-in default")
	}
	if c.CredentialKey == "" {
		warnings = append(warnings, "CREDENTIAL_KEY is empty, deriving credential key from SECRET_KEY")
	}
	if c.DiscordClientID == "" || c.DiscordClientSecret == "" {
		warnings = append(warnings, "Discord client credentials are not set, login will fail")
	}
	if c.PnWAPIKey == "" {
		warnings = append(warnings, "PNW_API_KEY is not set, alliance queries will fail")
	}
	if c.AllianceID == 0 {
		warnings = append(warnings, "ALLIANCE_ID is not set, no nation can be linked")
	}
	return warnings
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
