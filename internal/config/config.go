// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type AdminConfig struct {
	Token string `yaml:"token"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // brain-context cache lifetime
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // gcs | local | memory
	Bucket  string `yaml:"bucket"`
	BaseDir string `yaml:"base_dir"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	Model           string `yaml:"model"`
	ImageModel      string `yaml:"image_model"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type SourcesConfig struct {
	ArxivBaseURL      string        `yaml:"arxiv_base_url"`
	OpenReviewBaseURL string        `yaml:"openreview_base_url"`
	QueryFilter       string        `yaml:"query_filter"`
	Timeout           time.Duration `yaml:"timeout"`
}

type RateLimitConfig struct {
	Limit     int           `yaml:"limit"`
	Window    time.Duration `yaml:"window"`
	Retention time.Duration `yaml:"retention"`
	SweepEach time.Duration `yaml:"sweep_each"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	AI        AIConfig        `yaml:"ai"`
	Sources   SourcesConfig   `yaml:"sources"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file once at startup. The returned value is
// treated as immutable and passed by reference; nothing reads the
// environment ad hoc after this point.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.BaseDir == "" {
		cfg.Storage.BaseDir = "./data/blobs"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.ImageModel == "" {
		cfg.AI.ImageModel = "gpt-image-1"
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 8000
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 8
	}
	if cfg.Sources.ArxivBaseURL == "" {
		cfg.Sources.ArxivBaseURL = "http://export.arxiv.org/api/query"
	}
	if cfg.Sources.OpenReviewBaseURL == "" {
		cfg.Sources.OpenReviewBaseURL = "https://api.openreview.net"
	}
	if cfg.Sources.Timeout <= 0 {
		cfg.Sources.Timeout = 20 * time.Second
	}
	if cfg.RateLimit.Limit <= 0 {
		cfg.RateLimit.Limit = 30
	}
	if cfg.RateLimit.Window <= 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.RateLimit.Retention <= 0 {
		cfg.RateLimit.Retention = 24 * time.Hour
	}
	if cfg.RateLimit.SweepEach <= 0 {
		cfg.RateLimit.SweepEach = time.Hour
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Admin.Token == "" {
		return nil, errors.New("admin.token is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
