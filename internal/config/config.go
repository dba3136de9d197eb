package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DefaultStore string         `yaml:"default_store" mapstructure:"default_store"`
	Matching     MatchingConfig `yaml:"matching" mapstructure:"matching"`
	Messages     MessagesConfig `yaml:"messages" mapstructure:"messages"`
	Storage      StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Server       ServerConfig   `yaml:"server" mapstructure:"server"`
	Log          LogConfig      `yaml:"log" mapstructure:"log"`
}

// MatchingConfig tunes the best-match lookup and the conversation sentinels.
type MatchingConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
	ExitWord  string  `yaml:"exit_word" mapstructure:"exit_word"`
	SkipWord  string  `yaml:"skip_word" mapstructure:"skip_word"`
}

type MessagesConfig struct {
	Learned     string `yaml:"learned" mapstructure:"learned"`
	Skipped     string `yaml:"skipped" mapstructure:"skipped"`
	TeachPrompt string `yaml:"teach_prompt" mapstructure:"teach_prompt"`
}

// StorageConfig selects where knowledge bases are persisted.
type StorageConfig struct {
	Type string   `yaml:"type" mapstructure:"type"` // file, sqlite, postgres, badger, s3, memory
	Path string   `yaml:"path" mapstructure:"path"`
	DSN  string   `yaml:"dsn" mapstructure:"dsn"`
	S3   S3Config `yaml:"s3" mapstructure:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

type ServerConfig struct {
	Host    string `yaml:"host" mapstructure:"host"`
	Port    int    `yaml:"port" mapstructure:"port"`
	Mode    string `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
	Metrics bool   `yaml:"metrics" mapstructure:"metrics"`
}

type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	Format     string `yaml:"format" mapstructure:"format"` // text or json
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

var validStorageTypes = map[string]bool{
	"file": true, "sqlite": true, "postgres": true, "badger": true, "s3": true, "memory": true,
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		DefaultStore: "general",
		Matching: MatchingConfig{
			Threshold: 0.6,
			ExitWord:  "quit",
			SkipWord:  "skip",
		},
		Messages: MessagesConfig{
			Learned:     "Thank you! I learned a new response.",
			Skipped:     "Ok, let's move on.",
			TeachPrompt: "I don't know the answer. Can you teach me? Type the answer or 'skip' to skip:",
		},
		Storage: StorageConfig{
			Type: "file",
			Path: filepath.Join(Dir(), "knowledge"),
		},
		Server: ServerConfig{
			Host:    "localhost",
			Port:    8080,
			Mode:    "release",
			Metrics: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Dir is the learnbot configuration directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "learnbot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "learnbot")
}

// Load reads .env, config.yaml and LEARNBOT_* variables into the global viper
// instance, on top of DefaultConfig.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return LoadFrom(viper.GetViper())
}

// LoadFrom decodes the configuration held by v. If v has no explicit config
// file set, the usual search paths are used.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()
	setDefaults(v, cfg)

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix("LEARNBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode: %w", err)
	}

	cfg.Storage.DSN = expandEnv(cfg.Storage.DSN)
	cfg.Storage.S3.AccessKey = expandEnv(cfg.Storage.S3.AccessKey)
	cfg.Storage.S3.SecretKey = expandEnv(cfg.Storage.S3.SecretKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override keys that are
// absent from the config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("default_store", cfg.DefaultStore)
	v.SetDefault("matching.threshold", cfg.Matching.Threshold)
	v.SetDefault("matching.exit_word", cfg.Matching.ExitWord)
	v.SetDefault("matching.skip_word", cfg.Matching.SkipWord)
	v.SetDefault("messages.learned", cfg.Messages.Learned)
	v.SetDefault("messages.skipped", cfg.Messages.Skipped)
	v.SetDefault("messages.teach_prompt", cfg.Messages.TeachPrompt)
	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.dsn", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.prefix", "learnbot/")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.use_ssl", true)
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("server.metrics", cfg.Server.Metrics)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", cfg.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", cfg.Log.MaxBackups)
	v.SetDefault("log.max_age_days", cfg.Log.MaxAgeDays)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultStore == "" {
		return fmt.Errorf("config: default_store is required")
	}
	if c.Matching.Threshold <= 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("config: matching.threshold %v must be in (0, 1]", c.Matching.Threshold)
	}
	if strings.TrimSpace(c.Matching.ExitWord) == "" {
		return fmt.Errorf("config: matching.exit_word must not be empty")
	}
	if strings.TrimSpace(c.Matching.SkipWord) == "" {
		return fmt.Errorf("config: matching.skip_word must not be empty")
	}
	if strings.EqualFold(strings.TrimSpace(c.Matching.ExitWord), strings.TrimSpace(c.Matching.SkipWord)) {
		return fmt.Errorf("config: matching.exit_word and matching.skip_word must differ")
	}

	s := c.Storage
	if !validStorageTypes[s.Type] {
		return fmt.Errorf("config: storage.type %q is invalid (must be file, sqlite, postgres, badger, s3 or memory)", s.Type)
	}
	switch s.Type {
	case "file", "sqlite", "badger":
		if s.Path == "" {
			return fmt.Errorf("config: storage type %s requires storage.path", s.Type)
		}
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("config: storage type postgres requires storage.dsn")
		}
	case "s3":
		if s.S3.Endpoint == "" || s.S3.Bucket == "" {
			return fmt.Errorf("config: storage type s3 requires storage.s3.endpoint and storage.s3.bucket")
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		c.Log.Format = "text"
	}
	return nil
}
