package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is read when RESEARCH_ASSISTANT_CONFIG is not set and the file exists.
const DefaultFile = "research-assistant.toml"

type Config struct {
	ApiKey          string
	Model           string
	Port            string
	RequestTimeout  time.Duration // 0 leaves timeouts to the provider
	SessionTTL      time.Duration
	SessionLogLimit int
	CORSOrigins     []string
}

// fileConfig mirrors Config with plain numbers for durations.
type fileConfig struct {
	ApiKey                string   `toml:"api_key"`
	Model                 string   `toml:"model"`
	Port                  string   `toml:"port"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
	SessionTTLMinutes     int      `toml:"session_ttl_minutes"`
	SessionLogLimit       int      `toml:"session_log_limit"`
	CORSOrigins           []string `toml:"cors_origins"`
}

func Default() *Config {
	return &Config{
		Model:           "gemini-2.5-flash",
		Port:            "8081",
		SessionTTL:      time.Hour,
		SessionLogLimit: 100,
		CORSOrigins:     []string{"*"},
	}
}

// Load builds the configuration from defaults, the optional TOML file and
// the environment, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	path := os.Getenv("RESEARCH_ASSISTANT_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.ApiKey = firstEnv([]string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}, cfg.ApiKey)
	cfg.Model = getEnv("MODEL", cfg.Model)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.RequestTimeout = time.Duration(getEnvAsInt("REQUEST_TIMEOUT", int(cfg.RequestTimeout/time.Second))) * time.Second
	cfg.SessionTTL = time.Duration(getEnvAsInt("SESSION_TTL", int(cfg.SessionTTL/time.Minute))) * time.Minute
	cfg.SessionLogLimit = getEnvAsInt("SESSION_LOG_LIMIT", cfg.SessionLogLimit)
	// A list with no usable entry keeps the previous value; CORS needs at least one origin.
	if origins := splitList(os.Getenv("CORS_ORIGINS")); len(origins) > 0 {
		cfg.CORSOrigins = origins
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.ApiKey != "" {
		c.ApiKey = fc.ApiKey
	}
	if fc.Model != "" {
		c.Model = fc.Model
	}
	if fc.Port != "" {
		c.Port = fc.Port
	}
	if fc.RequestTimeoutSeconds > 0 {
		c.RequestTimeout = time.Duration(fc.RequestTimeoutSeconds) * time.Second
	}
	if fc.SessionTTLMinutes > 0 {
		c.SessionTTL = time.Duration(fc.SessionTTLMinutes) * time.Minute
	}
	if fc.SessionLogLimit > 0 {
		c.SessionLogLimit = fc.SessionLogLimit
	}
	if origins := splitList(strings.Join(fc.CORSOrigins, ",")); len(origins) > 0 {
		c.CORSOrigins = origins
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
