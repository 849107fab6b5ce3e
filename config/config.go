package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
// Nested keys use a double underscore: COMMENTFLOW_WEBHOOK__VERIFY_TOKEN -> webhook.verify_token.
const EnvPrefix = "COMMENTFLOW_"

type Configuration struct {
	ApiPort  string `json:"api_port" koanf:"api_port"`
	LogLevel string `json:"log_level" koanf:"log_level"`

	Database string `json:"database" koanf:"database"` // sqlite3 or postgres
	DbPath   string `json:"db_path" koanf:"db_path"`
	DbHost   string `json:"db_host" koanf:"db_host"`
	DbPort   string `json:"db_port" koanf:"db_port"`
	DbUser   string `json:"db_user" koanf:"db_user"`
	DbName   string `json:"db_name" koanf:"db_name"`
	DbPass   string `json:"db_pass" koanf:"db_pass"`
	DbDebug  bool   `json:"db_debug" koanf:"db_debug"`

	ClientURL string `json:"client_url" koanf:"client_url"`
	// AdminToken guards the configuration API. Empty leaves it open.
	AdminToken string `json:"admin_token" koanf:"admin_token"`

	Webhook struct {
		VerifyToken string `json:"verify_token" koanf:"verify_token"`
		AppSecret   string `json:"app_secret" koanf:"app_secret"`
		Object      string `json:"object" koanf:"object"`
	} `json:"webhook" koanf:"webhook"`

	Graph struct {
		BaseURL        string `json:"base_url" koanf:"base_url"`
		ApiVersion     string `json:"api_version" koanf:"api_version"`
		TimeoutSeconds int    `json:"timeout_seconds" koanf:"timeout_seconds"`
	} `json:"graph" koanf:"graph"`

	OpenAI struct {
		ApiKey string `json:"api_key" koanf:"api_key"`
		Model  string `json:"model" koanf:"model"`
	} `json:"openai" koanf:"openai"`

	Workers struct {
		Size         int `json:"size" koanf:"size"`
		QueueSize    int `json:"queue_size" koanf:"queue_size"`
		EventTimeout int `json:"event_timeout_seconds" koanf:"event_timeout_seconds"`
		EnqueueWait  int `json:"enqueue_wait_ms" koanf:"enqueue_wait_ms"`
	} `json:"workers" koanf:"workers"`

	Dedup struct {
		WindowSeconds int `json:"window_seconds" koanf:"window_seconds"`
		MaxEntries    int `json:"max_entries" koanf:"max_entries"`
	} `json:"dedup" koanf:"dedup"`
}

// Load reads the file at path (JSON or YAML) when it exists, overlays
// COMMENTFLOW_* environment variables and fills defaults.
func Load(path string) (Configuration, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			// YAML is a superset of JSON, so config.json keeps working.
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Configuration{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Configuration{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Configuration{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var c Configuration
	if err := k.Unmarshal("", &c); err != nil {
		return Configuration{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyDefaults(&c)
	return c, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func applyDefaults(c *Configuration) {
	if c.ApiPort == "" {
		c.ApiPort = "8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Database == "" {
		c.Database = "sqlite3"
	}
	if c.DbPath == "" {
		c.DbPath = "db/database.db"
	}
	if c.Webhook.Object == "" {
		c.Webhook.Object = "instagram"
	}
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = "https://graph.facebook.com"
	}
	if c.Graph.ApiVersion == "" {
		c.Graph.ApiVersion = "v22.0"
	}
	if c.Graph.TimeoutSeconds <= 0 {
		c.Graph.TimeoutSeconds = 10
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.Workers.Size <= 0 {
		c.Workers.Size = 4
	}
	if c.Workers.QueueSize <= 0 {
		c.Workers.QueueSize = 256
	}
	if c.Workers.EventTimeout <= 0 {
		c.Workers.EventTimeout = 60
	}
	if c.Workers.EnqueueWait <= 0 {
		c.Workers.EnqueueWait = 2000
	}
	if c.Dedup.WindowSeconds <= 0 {
		c.Dedup.WindowSeconds = 600
	}
	if c.Dedup.MaxEntries <= 0 {
		c.Dedup.MaxEntries = 4096
	}
}

func (c Configuration) GraphTimeout() time.Duration {
	return time.Duration(c.Graph.TimeoutSeconds) * time.Second
}

func (c Configuration) EventTimeout() time.Duration {
	return time.Duration(c.Workers.EventTimeout) * time.Second
}

func (c Configuration) EnqueueWait() time.Duration {
	return time.Duration(c.Workers.EnqueueWait) * time.Millisecond
}

func (c Configuration) DedupWindow() time.Duration {
	return time.Duration(c.Dedup.WindowSeconds) * time.Second
}

// Validate reports settings the webhook cannot run without.
func (c Configuration) Validate() error {
	if strings.TrimSpace(c.Webhook.VerifyToken) == "" {
		return fmt.Errorf("webhook.verify_token is required")
	}
	switch c.Database {
	case "sqlite3", "postgres", "postgresql":
	default:
		return fmt.Errorf("invalid database %q: must be sqlite3 or postgres", c.Database)
	}
	return nil
}
