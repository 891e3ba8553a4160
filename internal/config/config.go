package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string `yaml:"port"`
		FrontendURL string `yaml:"frontend_url"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL             string `yaml:"ttl"`
		QuestionSeconds int    `yaml:"question_seconds"`
		Fallback        *bool  `yaml:"fallback"`
	} `yaml:"quiz"`
	Client struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"client"`
}

// Default returns a config usable without a file: in-memory fallback data, port 8080.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Server.FrontendURL = "http://localhost:5173"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Quiz.QuestionSeconds = 60
	cfg.Client.BaseURL = "http://localhost:8080/api"
	cfg.Client.Timeout = "10s"
	return cfg
}

// Load reads YAML config from path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FallbackEnabled reports whether fallback questions may be substituted; on unless disabled.
func (c Config) FallbackEnabled() bool {
	return c.Quiz.Fallback == nil || *c.Quiz.Fallback
}

// QuestionDuration is the per-question timer budget.
func (c Config) QuestionDuration() int {
	if c.Quiz.QuestionSeconds <= 0 {
		return 60
	}
	return c.Quiz.QuestionSeconds
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
