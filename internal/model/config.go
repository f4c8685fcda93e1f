package model

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig locates the local SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig controls the diagnostic log written while the TUI runs.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// AIConfig holds settings for the medication photo analyzer.
type AIConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Model      string `mapstructure:"model" yaml:"model"`
	MaxTokens  int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// MailConfig configures the optional IMAP outbox notifier. Messages are
// appended to Mailbox addressed to <contact>@GatewayDomain.
type MailConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Host          string `mapstructure:"host" yaml:"host"`
	Port          string `mapstructure:"port" yaml:"port"`
	TLS           bool   `mapstructure:"tls" yaml:"tls"`
	Username      string `mapstructure:"username" yaml:"username"`
	Mailbox       string `mapstructure:"mailbox" yaml:"mailbox"`
	From          string `mapstructure:"from" yaml:"from"`
	GatewayDomain string `mapstructure:"gateway_domain" yaml:"gateway_domain"`
}

// NotifyConfig groups the caregiver notification settings.
type NotifyConfig struct {
	TimeoutSec int        `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	Mail       MailConfig `mapstructure:"mail" yaml:"mail"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Notify   NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Contacts []Contact      `mapstructure:"contacts" yaml:"contacts"`
}

// DefaultConfigDir returns ~/.config/medreminder.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "medreminder")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/medreminder/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := DefaultConfigDir()
	return &AppConfig{
		Database: DatabaseConfig{Path: filepath.Join(dir, "medreminder.db")},
		Log:      LogConfig{File: filepath.Join(dir, "medreminder.log"), Level: "info"},
		AI: AIConfig{
			Enabled:    true,
			Model:      "claude-sonnet-4-5-20250929",
			MaxTokens:  512,
			TimeoutSec: 30,
		},
		Notify: NotifyConfig{
			TimeoutSec: 15,
			Mail: MailConfig{
				Port:    "993",
				TLS:     true,
				Mailbox: "Outbox",
			},
		},
		Contacts: DefaultContacts(),
	}
}

// NewViper returns a viper instance with every default registered, ready
// for flag binding and ReadInConfig.
func NewViper(path string) *viper.Viper {
	d := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("ai.enabled", d.AI.Enabled)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.max_tokens", d.AI.MaxTokens)
	v.SetDefault("ai.timeout_sec", d.AI.TimeoutSec)
	v.SetDefault("notify.timeout_sec", d.Notify.TimeoutSec)
	v.SetDefault("notify.mail.enabled", false)
	v.SetDefault("notify.mail.port", d.Notify.Mail.Port)
	v.SetDefault("notify.mail.tls", d.Notify.Mail.TLS)
	v.SetDefault("notify.mail.mailbox", d.Notify.Mail.Mailbox)

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	return LoadConfigFrom(NewViper(path))
}

// LoadConfigFrom reads and decodes configuration from a prepared viper
// instance, typically one with command-line flags bound to it.
func LoadConfigFrom(v *viper.Viper) (*AppConfig, error) {
	path := v.ConfigFileUsed()
	cfg := defaultAppConfig()

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	// Slices are decoded in place, so start from an empty contact list.
	cfg.Contacts = nil
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// An explicit empty list in the file means "no contacts"; only fall
	// back when the key is absent.
	if !v.IsSet("contacts") {
		cfg.Contacts = DefaultContacts()
	}
	if cfg.AI.TimeoutSec <= 0 {
		cfg.AI.TimeoutSec = 30
	}
	if cfg.Notify.TimeoutSec <= 0 {
		cfg.Notify.TimeoutSec = 15
	}

	return cfg, nil
}

// ErrConfigExists is returned by InitConfig when the file is already there.
var ErrConfigExists = errors.New("config file already exists")

// InitConfig writes cfg to path unless a file already exists there.
func InitConfig(path string, cfg *AppConfig) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, ErrConfigExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config %s: %w", path, err)
	}
	return SaveConfig(path, cfg)
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log", cfg.Log)
	v.Set("ai", cfg.AI)
	v.Set("notify", cfg.Notify)
	v.Set("contacts", cfg.Contacts)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// DumpConfig writes cfg to w as YAML in the config file layout.
func DumpConfig(w io.Writer, cfg *AppConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
