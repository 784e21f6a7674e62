// Package config loads the simplebot runtime configuration.
//
// Sources, lowest precedence first: built-in defaults, a .env file, a YAML (or JSON)
// config file, SIMPLEBOT_* environment variables.
package config

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "simplebot.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SIMPLEBOT_"

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Dialog  DialogConfig  `yaml:"dialog" json:"dialog"`
	Content ContentConfig `yaml:"content" json:"content"`
	Email   EmailConfig   `yaml:"email" json:"email"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// StorageConfig selects the state store backend.
type StorageConfig struct {
	Driver        string      `yaml:"driver" json:"driver"`
	Path          string      `yaml:"path" json:"path"`
	Redis         RedisConfig `yaml:"redis" json:"redis"`
	EncryptionKey string      `yaml:"encryption_key" json:"encryption_key"` // hex, 32 bytes
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"password"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

type DialogConfig struct {
	EmailPolicy string `yaml:"email_policy" json:"email_policy"`
	MinLength   int    `yaml:"min_length" json:"min_length"`
	WelcomeCard string `yaml:"welcome_card" json:"welcome_card"`
	Greeting    string `yaml:"greeting" json:"greeting"`
}

// ContentConfig points at the asset repository (cards, email template).
type ContentConfig struct {
	Dir           string `yaml:"dir" json:"dir"`
	EmailTemplate string `yaml:"email_template" json:"email_template"`
}

type EmailConfig struct {
	Subject string `yaml:"subject" json:"subject"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":3978"},
		Log:    LogConfig{Level: "info", Format: "text"},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Path:   filepath.Join(".simplebot", "state"),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "simplebot:state:",
			},
		},
		Dialog: DialogConfig{
			EmailPolicy: "contains-at",
			MinLength:   5,
			WelcomeCard: "end-card",
		},
		Content: ContentConfig{
			EmailTemplate: "email",
		},
		Email:   EmailConfig{Subject: "Hello from a simple bot!"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load builds the configuration. An empty path means DefaultFile if it exists;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	// .env is optional, real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"SERVER_ADDR":            &c.Server.Addr,
		"LOG_LEVEL":              &c.Log.Level,
		"LOG_FORMAT":             &c.Log.Format,
		"STORAGE_DRIVER":         &c.Storage.Driver,
		"STORAGE_PATH":           &c.Storage.Path,
		"STORAGE_ENCRYPTION_KEY": &c.Storage.EncryptionKey,
		"REDIS_ADDR":             &c.Storage.Redis.Addr,
		"REDIS_PASSWORD":         &c.Storage.Redis.Password,
		"REDIS_PREFIX":           &c.Storage.Redis.Prefix,
		"EMAIL_POLICY":           &c.Dialog.EmailPolicy,
		"WELCOME_CARD":           &c.Dialog.WelcomeCard,
		"GREETING":               &c.Dialog.Greeting,
		"CONTENT_DIR":            &c.Content.Dir,
		"EMAIL_TEMPLATE":         &c.Content.EmailTemplate,
		"EMAIL_SUBJECT":          &c.Email.Subject,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":   &c.Storage.Redis.DB,
		"MIN_LENGTH": &c.Dialog.MinLength,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "REDIS_TTL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREDIS_TTL: %w", EnvPrefix, err)
		}
		c.Storage.Redis.TTL = d
	}

	if v, ok := os.LookupEnv(EnvPrefix + "METRICS_ENABLED"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			c.Metrics.Enabled = true
		case "0", "false", "no", "off":
			c.Metrics.Enabled = false
		default:
			return fmt.Errorf("%sMETRICS_ENABLED: invalid boolean %q", EnvPrefix, v)
		}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile, DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path cannot be empty for driver %q", c.Storage.Driver)
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New("storage.redis.addr cannot be empty")
		}
		if c.Storage.Redis.TTL < 0 {
			return errors.New("storage.redis.ttl must be >= 0")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if c.Storage.EncryptionKey != "" {
		if _, err := c.EncryptionKey(); err != nil {
			return err
		}
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}

	if c.Dialog.MinLength < 0 {
		return errors.New("dialog.min_length must be >= 0")
	}
	return nil
}

// EncryptionKey decodes the storage encryption key; nil when unset.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.Storage.EncryptionKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Storage.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("storage.encryption_key must be hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("storage.encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
