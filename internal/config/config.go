// Package config loads the stepwise configuration file.
//
// The file lives at $XDG_CONFIG_HOME/stepwise/config.yaml (defaults to
// ~/.config/stepwise/config.yaml) unless STEPWISE_CONFIG or --config points
// elsewhere. A missing file yields the defaults.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/stepwise/pkg/domain"
)

// EnvPath names the environment variable overriding the config path.
const EnvPath = "STEPWISE_CONFIG"

// Backend names a KVStore implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
)

// Redis holds the connection settings of the redis backend.
type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
	// ConnectTimeout bounds the startup ping retries.
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	Backend Backend `yaml:"backend"`
	// Path is a directory (file backend) or a database file (sqlite backend).
	Path          string   `yaml:"path,omitempty"`
	Key           string   `yaml:"key"`
	EncryptionKey string   `yaml:"encryption_key,omitempty"`
	FallbackKeys  []string `yaml:"fallback_keys,omitempty"`
	// Redact lists regular expressions masked in persisted input text.
	Redact []string `yaml:"redact,omitempty"`
	Redis  Redis    `yaml:"redis"`
}

type Scheduler struct {
	Debounce time.Duration `yaml:"debounce"`
	// StepTimeout bounds a single step evaluation; zero means unbounded.
	StepTimeout time.Duration `yaml:"step_timeout,omitempty"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTP struct {
	Addr string `yaml:"addr"`
}

type Input struct {
	MaxSize int `yaml:"max_size"`
}

// Config is the full configuration file.
type Config struct {
	Storage   Storage   `yaml:"storage"`
	Scheduler Scheduler `yaml:"scheduler"`
	Log       Log       `yaml:"log"`
	HTTP      HTTP      `yaml:"http"`
	Input     Input     `yaml:"input"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Storage: Storage{
			Backend: BackendFile,
			Path:    DataDir(),
			Key:     domain.DefaultStorageKey,
			Redis: Redis{
				Addr:           "localhost:6379",
				ConnectTimeout: 5 * time.Second,
			},
		},
		Scheduler: Scheduler{Debounce: domain.DefaultDebounce},
		Log:       Log{Level: "info", Format: "text"},
		HTTP:      HTTP{Addr: ":8080"},
		Input:     Input{MaxSize: 1 << 20},
	}
}

// Path returns the config file location. It respects STEPWISE_CONFIG and
// XDG_CONFIG_HOME, falling back to ~/.config/stepwise/config.yaml.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".config", "stepwise", "config.yaml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "stepwise", "config.yaml")
}

// DataDir returns the default data directory ($XDG_DATA_HOME/stepwise).
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".stepwise", "data")
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "stepwise")
}

// Load reads the config file at path (Path() when empty). If the file does
// not exist, the defaults are returned (not an error). Fields absent from the
// file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		c.Storage.Key = domain.DefaultStorageKey
	}
	if c.Scheduler.Debounce <= 0 {
		c.Scheduler.Debounce = domain.DefaultDebounce
	}
	if c.Storage.EncryptionKey != "" {
		if _, err := decodeKey(c.Storage.EncryptionKey); err != nil {
			return fmt.Errorf("storage.encryption_key: %w", err)
		}
	}
	for i, k := range c.Storage.FallbackKeys {
		if _, err := decodeKey(k); err != nil {
			return fmt.Errorf("storage.fallback_keys[%d]: %w", i, err)
		}
	}
	for i, p := range c.Storage.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("storage.redact[%d]: %w", i, err)
		}
	}
	return nil
}

// EncryptionKeys decodes the active and fallback keys. active is nil when
// encryption is disabled.
func (c *Config) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if c.Storage.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(c.Storage.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range c.Storage.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key must be hex encoded: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Save writes the config to path, creating directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
