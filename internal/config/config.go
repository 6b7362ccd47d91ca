package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing default file is not an error.
const DefaultPath = "triage.yaml"

// Config holds all triage configuration.
type Config struct {
	Tree       string           `yaml:"tree"`
	Rules      string           `yaml:"rules"`
	EntryNode  string           `yaml:"entry_node"`
	HTTP       HTTPConfig       `yaml:"http"`
	Log        LogConfig        `yaml:"log"`
	Redis      RedisConfig      `yaml:"redis"`
	Supabase   SupabaseConfig   `yaml:"supabase"`
	Input      InputConfig      `yaml:"input"`
	Encryption EncryptionConfig `yaml:"encryption"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// RedisConfig enables the Redis session store when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// SupabaseConfig enables the PostgREST doctor directory when URL is set.
type SupabaseConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type InputConfig struct {
	MaxSize int `yaml:"max_size"`
}

// EncryptionConfig seals stored sessions when Key is set. Keys are 32 bytes,
// hex or base64 encoded; FallbackKeys still decrypt after a rotation.
type EncryptionConfig struct {
	Key          string   `yaml:"key"`
	FallbackKeys []string `yaml:"fallback_keys"`
}

// Default returns the configuration used when nothing else is provided.
func Default() Config {
	return Config{
		HTTP:  HTTPConfig{Addr: ":8080"},
		Log:   LogConfig{Level: "info", Format: "text"},
		Redis: RedisConfig{Prefix: "triage:session:", TTL: 30 * time.Minute},
		Input: InputConfig{MaxSize: 4096},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// TRIAGE_* environment variables, in that order of precedence (last wins).
// An empty path means DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Tree = getenv("TRIAGE_TREE", c.Tree)
	c.Rules = getenv("TRIAGE_RULES", c.Rules)
	c.EntryNode = getenv("TRIAGE_ENTRY_NODE", c.EntryNode)
	c.HTTP.Addr = getenv("TRIAGE_HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = getenv("TRIAGE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("TRIAGE_LOG_FORMAT", c.Log.Format)
	c.Redis.Addr = getenv("TRIAGE_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getenv("TRIAGE_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getenvInt("TRIAGE_REDIS_DB", c.Redis.DB, 0)
	c.Redis.Prefix = getenv("TRIAGE_REDIS_PREFIX", c.Redis.Prefix)
	c.Redis.TTL = getenvDuration("TRIAGE_REDIS_TTL", c.Redis.TTL)
	c.Supabase.URL = getenv("TRIAGE_SUPABASE_URL", c.Supabase.URL)
	c.Supabase.Key = getenv("TRIAGE_SUPABASE_KEY", c.Supabase.Key)
	c.Input.MaxSize = getenvInt("TRIAGE_MAX_INPUT_SIZE", c.Input.MaxSize, 1)
	c.Encryption.Key = getenv("TRIAGE_ENCRYPTION_KEY", c.Encryption.Key)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback, min int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
