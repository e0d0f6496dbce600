// Package config loads downloader configuration from a YAML file,
// environment variables (BMD_ prefix), and defaults, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// Config holds every user-settable knob.
type Config struct {
	// SessData is the Bilibili session cookie. Empty restricts access to
	// free content. Supports ${ENV_VAR} references.
	SessData string `mapstructure:"sessdata" yaml:"sessdata"`

	// SaveDir is the root under which per-series directories are created.
	SaveDir string `mapstructure:"save_dir" yaml:"save_dir"`

	// SaveFormat selects the output artifact: pdf, folder, or zip.
	SaveFormat string `mapstructure:"save_format" yaml:"save_format"`

	// Workers bounds episode-level download parallelism.
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		SessData:   "${BILI_SESSDATA}",
		SaveDir:    defaultSaveDir(),
		SaveFormat: "pdf",
		Workers:    4,
	}
}

func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bilibili-manga"
	}
	return filepath.Join(home, "Downloads", "bilibili-manga")
}

// Load reads configuration from cfgFile, or from the default search path
// (./config.yaml, ~/.bmd/config.yaml) when cfgFile is empty. A missing
// config file is not an error; defaults apply.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("sessdata", defaults.SessData)
	v.SetDefault("save_dir", defaults.SaveDir)
	v.SetDefault("save_format", defaults.SaveFormat)
	v.SetDefault("workers", defaults.Workers)

	v.SetEnvPrefix("BMD")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.bmd")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SessData = ResolveEnvVars(cfg.SessData)
	return &cfg, nil
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# BiliBili-Manga-Downloader configuration
# sessdata uses ${ENV_VAR} syntax to reference environment variables
# Set it in your shell: export BILI_SESSDATA=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
