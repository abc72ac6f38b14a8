package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds mailbox and shell configuration values.
type Config struct {
	DataDir      string        `mapstructure:"data_dir" yaml:"data_dir"`
	InboxName    string        `mapstructure:"inbox_name" yaml:"inbox_name"`
	OutboxName   string        `mapstructure:"outbox_name" yaml:"outbox_name"`
	Backend      string        `mapstructure:"backend" yaml:"backend"`
	DatabasePath string        `mapstructure:"database_path" yaml:"database_path"`
	RedisURL     string        `mapstructure:"redis_url" yaml:"redis_url"`
	Lock         bool          `mapstructure:"lock" yaml:"lock"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`

	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
	Responder         string `mapstructure:"responder" yaml:"responder"`
	Greeting          string `mapstructure:"greeting" yaml:"greeting"`
	Farewell          string `mapstructure:"farewell" yaml:"farewell"`
	EmbeddedAssistant bool   `mapstructure:"embedded_assistant" yaml:"embedded_assistant"`
}

// Default returns configuration matching the classic two-file layout in the
// working directory.
func Default() Config {
	return Config{
		DataDir:           ".",
		InboxName:         "assistant_inbox",
		OutboxName:        "assistant_outbox",
		Backend:           BackendFile,
		DatabasePath:      "mailbridge.db",
		RedisURL:          "redis://localhost:6379/0",
		PollInterval:      time.Second,
		Addr:              "localhost:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		Responder:         "keyword",
		Greeting:          "Assistant is online and ready to chat!",
		Farewell:          "Assistant is shutting down... Goodbye!",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Boolean switches are only ever turned on.
func (c *Config) UpdateFrom(other Config) {
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.InboxName != "" {
		c.InboxName = other.InboxName
	}
	if other.OutboxName != "" {
		c.OutboxName = other.OutboxName
	}
	if other.Backend != "" {
		c.Backend = other.Backend
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.RedisURL != "" {
		c.RedisURL = other.RedisURL
	}
	if other.Lock {
		c.Lock = true
	}
	if other.PollInterval != 0 {
		c.PollInterval = other.PollInterval
	}
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Responder != "" {
		c.Responder = other.Responder
	}
	if other.Greeting != "" {
		c.Greeting = other.Greeting
	}
	if other.Farewell != "" {
		c.Farewell = other.Farewell
	}
	if other.EmbeddedAssistant {
		c.EmbeddedAssistant = true
	}
}

// Validate reports configuration that cannot produce a working mailbox pair.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendRedis, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.InboxName == "" || c.OutboxName == "" {
		errs = append(errs, errors.New("inbox_name and outbox_name are required"))
	} else if c.InboxName == c.OutboxName {
		errs = append(errs, errors.New("inbox_name and outbox_name must differ"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	return errors.Join(errs...)
}

// InboxPath returns the inbox file location for the file backend.
func (c Config) InboxPath() string {
	return filepath.Join(c.DataDir, c.InboxName+".json")
}

// OutboxPath returns the outbox file location for the file backend.
func (c Config) OutboxPath() string {
	return filepath.Join(c.DataDir, c.OutboxName+".json")
}
