package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig limits one route. Path segments written as "*" match any
// single segment; a trailing "/" matches any path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int           // bucket capacity, Limit when 0
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	if !getEnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         getEnvDuration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       parseIPList(getEnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(getEnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(getEnvInt("RATE_LIMIT_LLM_PER_HOUR", 60)),
	}
}

// DefaultEndpointConfigs returns the per-route limits. Routes that call the
// reasoning collaborator share llmPerHour; plain writes are limited per minute.
func DefaultEndpointConfigs(llmPerHour int) []EndpointConfig {
	llm := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: llmPerHour, Window: time.Hour, Burst: 5}
	}
	write := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: 100, Window: time.Minute, Burst: 10}
	}

	return []EndpointConfig{
		llm("/candidates/*/evaluate"),
		llm("/candidates/*/evaluate/stream"),
		llm("/users/*/cv"),
		llm("/users/*/job-fit"),
		llm("/cv-analyses/*/recommendations"),
		llm("/sessions/*/rounds"),
		llm("/sessions/*/rounds/*/answers"),
		llm("/sessions/*/rounds/*/complete"),
		llm("/sessions/*/follow-up"),

		write("/auth/login"),
		write("/users"),
		write("/candidates"),
		write("/candidates/"),
		write("/users/"),
		write("/sessions/"),
		{Path: "/candidates/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
