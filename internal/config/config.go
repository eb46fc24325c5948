package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Generator struct {
		Provider  string `yaml:"provider"`
		APIKey    string `yaml:"api_key"`
		Model     string `yaml:"model"`
		BaseURL   string `yaml:"base_url"`
		Fallback  *bool  `yaml:"fallback"`
		CacheTTL  string `yaml:"cache_ttl"`
		MockDelay string `yaml:"mock_delay"`
	} `yaml:"generator"`
	Session struct {
		AdvanceDelay string `yaml:"advance_delay"`
		Tick         string `yaml:"tick"`
	} `yaml:"session"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads YAML config from path. A missing file is not an error; the
// zero config selects the in-memory store and the mock generator, so the
// service stays runnable without any configuration at all.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// APIKeyOrEnv resolves the completion credential: config value first, then
// the QUIZ_API_KEY environment variable. An empty result is a mode switch
// (mock generator), never an error.
func (c Config) APIKeyOrEnv() string {
	if c.Generator.APIKey != "" {
		return c.Generator.APIKey
	}
	return os.Getenv("QUIZ_API_KEY")
}

// FallbackEnabled reports whether generation failures fall back to the mock
// generator silently. Defaults to true when unset.
func (c Config) FallbackEnabled() bool {
	if c.Generator.Fallback == nil {
		return true
	}
	return *c.Generator.Fallback
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
