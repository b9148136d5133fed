// Package config provides configuration loading and validation for the
// server, the worker and the CLI commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/hiring-coach/internal/logger"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
)

// Config is the full application configuration. Every field has a default;
// files and environment variables only override.
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Queue     QueueConfig     `json:"queue" yaml:"queue"`
	Blob      BlobConfig      `json:"blob" yaml:"blob"`
	Auth      AuthConfig      `json:"auth" yaml:"auth"`
	Fetch     FetchConfig     `json:"fetch" yaml:"fetch"`
	Interview InterviewConfig `json:"interview" yaml:"interview"`
	Log       logger.Config   `json:"log" yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port                   int `json:"port" yaml:"port"`
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
	MaxUploadMB            int `json:"max_upload_mb" yaml:"max_upload_mb"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend     string `json:"backend" yaml:"backend"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	SQLitePath  string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
}

// LLMConfig configures the reasoning collaborator.
type LLMConfig struct {
	Provider       string            `json:"provider" yaml:"provider"`
	APIKey         string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature    float32           `json:"temperature" yaml:"temperature"`
	Models         map[string]string `json:"models,omitempty" yaml:"models,omitempty"`
}

// Timeout returns the per-call collaborator timeout.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// QueueConfig configures the async evaluation queue. An empty URL disables it.
type QueueConfig struct {
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Queue string `json:"queue" yaml:"queue"`
}

// Enabled reports whether a broker is configured.
func (c QueueConfig) Enabled() bool {
	return c.URL != ""
}

// BlobConfig configures raw document archival. An empty endpoint disables it.
type BlobConfig struct {
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Enabled reports whether object storage is configured.
func (c BlobConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig configures bearer-token authentication for user routes.
type AuthConfig struct {
	Enabled            bool   `json:"enabled" yaml:"enabled"`
	JWTSecret          string `json:"jwt_secret,omitempty" yaml:"jwt_secret,omitempty"`
	JWTExpirationHours int    `json:"jwt_expiration_hours" yaml:"jwt_expiration_hours"`
	BcryptCost         int    `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	PasswordPepper     string `json:"password_pepper,omitempty" yaml:"password_pepper,omitempty"`
}

// FetchConfig configures job posting retrieval.
type FetchConfig struct {
	UseBrowser     bool `json:"use_browser" yaml:"use_browser"`
	TimeoutSeconds int  `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// InterviewConfig holds the practice interview tunables.
type InterviewConfig struct {
	CompletionThreshold float64 `json:"completion_threshold" yaml:"completion_threshold"`
	MinQuestions        int     `json:"min_questions" yaml:"min_questions"`
	MaxQuestions        int     `json:"max_questions" yaml:"max_questions"`
	TotalRounds         int     `json:"total_rounds" yaml:"total_rounds"`
	PracticeTime        string  `json:"practice_time" yaml:"practice_time"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   8080,
			ShutdownTimeoutSeconds: 10,
			MaxUploadMB:            10,
		},
		Store: StoreConfig{
			Backend:    BackendMemory,
			SQLitePath: "hiring-coach.db",
		},
		LLM: LLMConfig{
			Provider:       "gemini",
			TimeoutSeconds: 120,
			Temperature:    0.1,
		},
		Queue: QueueConfig{Queue: "evaluation_jobs"},
		Blob:  BlobConfig{Bucket: "hiring-coach-documents"},
		Auth: AuthConfig{
			JWTExpirationHours: 24,
			BcryptCost:         12,
		},
		Fetch: FetchConfig{TimeoutSeconds: 30},
		Interview: InterviewConfig{
			CompletionThreshold: 100,
			MinQuestions:        15,
			MaxQuestions:        20,
			TotalRounds:         0,
			PracticeTime:        "1 week",
		},
		Log: logger.Config{Level: "info", Format: "json"},
	}
}

// LoadConfig reads a YAML or JSON file (chosen by extension) over the defaults.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return cfg, nil
}

// Load returns the defaults, overlaid by the file at path (if any) and then
// by environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays values from the environment. getenv is os.Getenv outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
		*dst = n
		return nil
	}
	flag := func(key string, dst *bool) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
		*dst = b
		return nil
	}

	str("STORE_BACKEND", &c.Store.Backend)
	str("DATABASE_URL", &c.Store.DatabaseURL)
	str("REDIS_URL", &c.Store.RedisURL)
	str("SQLITE_PATH", &c.Store.SQLitePath)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("GEMINI_API_KEY", &c.LLM.APIKey)
	str("AMQP_URL", &c.Queue.URL)
	str("AMQP_QUEUE", &c.Queue.Queue)
	str("MINIO_ENDPOINT", &c.Blob.Endpoint)
	str("MINIO_ACCESS_KEY", &c.Blob.AccessKey)
	str("MINIO_SECRET_KEY", &c.Blob.SecretKey)
	str("MINIO_BUCKET", &c.Blob.Bucket)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("PASSWORD_PEPPER", &c.Auth.PasswordPepper)

	for _, err := range []error{
		num("PORT", &c.Server.Port),
		num("LLM_TIMEOUT", &c.LLM.TimeoutSeconds),
		num("JWT_EXPIRATION_HOURS", &c.Auth.JWTExpirationHours),
		num("BCRYPT_COST", &c.Auth.BcryptCost),
		flag("MINIO_USE_SSL", &c.Blob.UseSSL),
		flag("AUTH_ENABLED", &c.Auth.Enabled),
		flag("USE_BROWSER", &c.Fetch.UseBrowser),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that the configuration has valid values.
// The collaborator API key is checked where the client is built.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("config error: 'store.database_url' is required for the postgres backend")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("config error: 'store.redis_url' is required for the redis backend")
		}
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("config error: 'store.sqlite_path' is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("config error: unknown store backend %q", c.Store.Backend)
	}

	if c.LLM.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: 'llm.timeout_seconds' must be positive")
	}

	if c.Interview.CompletionThreshold <= 0 || c.Interview.CompletionThreshold > 100 {
		return fmt.Errorf("config error: 'interview.completion_threshold' must be in (0, 100]")
	}
	if c.Interview.MinQuestions < 1 || c.Interview.MaxQuestions < c.Interview.MinQuestions {
		return fmt.Errorf("config error: interview question bounds are invalid (%d-%d)",
			c.Interview.MinQuestions, c.Interview.MaxQuestions)
	}

	if c.Blob.Enabled() && (c.Blob.AccessKey == "" || c.Blob.SecretKey == "") {
		return fmt.Errorf("config error: blob storage requires access and secret keys")
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("config error: JWT_SECRET is required when auth is enabled")
	}

	return nil
}
