// Package config provides configuration management for dgmail. Values are
// resolved in order: defaults, then the YAML file, then DGMAIL_* environment
// variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvHost       = "DGMAIL_HOST"
	EnvPort       = "DGMAIL_PORT"
	EnvUsername   = "DGMAIL_USERNAME"
	EnvPassword   = "DGMAIL_PASSWORD"
	EnvMailbox    = "DGMAIL_MAILBOX"
	EnvTimeout    = "DGMAIL_TIMEOUT"
	EnvInsecure   = "DGMAIL_INSECURE"
	EnvCheckpoint = "DGMAIL_CHECKPOINT"
	EnvLogLevel   = "DGMAIL_LOG_LEVEL"
)

const (
	defaultPort    = 993
	defaultMailbox = "INBOX"
	defaultTimeout = 10 * time.Second
)

// Config is the resolved runtime configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
	Timeout  time.Duration
	// Insecure dials without TLS. Only meant for local test servers.
	Insecure   bool
	Checkpoint string // path of the checkpoint file, empty disables it
	LogLevel   string
}

// FileConfig represents the YAML configuration structure.
type FileConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Username   string `yaml:"username,omitempty"`
	Password   string `yaml:"password,omitempty"`
	Mailbox    string `yaml:"mailbox,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"` // Go duration string, e.g. "10s"
	Insecure   bool   `yaml:"insecure,omitempty"`
	Checkpoint string `yaml:"checkpoint,omitempty"`
	LogLevel   string `yaml:"logLevel,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:    defaultPort,
		Mailbox: defaultMailbox,
		Timeout: defaultTimeout,
	}
}

// LoadFile loads a YAML config file without applying defaults or env
// overrides. Unknown keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &fc, nil
}

// Load resolves the configuration. path may be empty to skip file loading.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := cfg.mergeFile(fc); err != nil {
			return Config{}, err
		}
	}

	cfg.Host = ParseString(EnvHost, cfg.Host)
	cfg.Port = ParseInt(EnvPort, cfg.Port)
	cfg.Username = ParseString(EnvUsername, cfg.Username)
	cfg.Password = ParseString(EnvPassword, cfg.Password)
	cfg.Mailbox = ParseString(EnvMailbox, cfg.Mailbox)
	cfg.Timeout = ParseDuration(EnvTimeout, cfg.Timeout)
	cfg.Insecure = ParseBool(EnvInsecure, cfg.Insecure)
	cfg.Checkpoint = ParseString(EnvCheckpoint, cfg.Checkpoint)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)

	return cfg, nil
}

func (c *Config) mergeFile(fc *FileConfig) error {
	if fc.Host != "" {
		c.Host = fc.Host
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.Username != "" {
		c.Username = fc.Username
	}
	if fc.Password != "" {
		c.Password = fc.Password
	}
	if fc.Mailbox != "" {
		c.Mailbox = fc.Mailbox
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return fmt.Errorf("config: timeout: %w", err)
		}
		c.Timeout = d
	}
	if fc.Insecure {
		c.Insecure = true
	}
	if fc.Checkpoint != "" {
		c.Checkpoint = fc.Checkpoint
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	return nil
}

// Validate checks that the configuration is usable for connecting.
func (c Config) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host must be set"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1..65535", c.Port))
	}
	if c.Username == "" {
		errs = append(errs, errors.New("username must be set"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("password must be set"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	return errors.Join(errs...)
}

// Addr returns the host:port dial target.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Redacted renders the configuration for logging with the password masked.
func (c Config) Redacted() map[string]any {
	password := ""
	if c.Password != "" {
		password = "***"
	}
	return map[string]any{
		"host":       c.Host,
		"port":       c.Port,
		"username":   c.Username,
		"password":   password,
		"mailbox":    c.Mailbox,
		"timeout":    c.Timeout.String(),
		"insecure":   c.Insecure,
		"checkpoint": c.Checkpoint,
	}
}
