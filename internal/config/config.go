package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/syou6162/cmrunner/internal/logger"
	"github.com/syou6162/cmrunner/internal/tool"
)

// Config represents the cmrunner configuration.
type Config struct {
	Tool      ToolConfig   `yaml:"tool" toml:"tool"`
	Client    ClientConfig `yaml:"client" toml:"client"`
	Workspace string       `yaml:"workspace" toml:"workspace"` // Default working directory for cm
	LogLevel  string       `yaml:"log_level" toml:"log_level"` // error, warn, info, debug
}

// ToolConfig describes the cm executable.
type ToolConfig struct {
	CmPath              string `yaml:"cm_path" toml:"cm_path"`                             // Path to cm, empty = not configured
	UseInvariantCulture bool   `yaml:"use_invariant_culture" toml:"use_invariant_culture"` // Inject DOTNET_SYSTEM_GLOBALIZATION_INVARIANT=1
}

// ClientConfig holds client-side overrides appended to every cm command.
type ClientConfig struct {
	Server      string `yaml:"server" toml:"server"`
	Username    string `yaml:"username" toml:"username"`
	Password    string `yaml:"password" toml:"password"` // Masked in every log line
	WorkingMode string `yaml:"working_mode" toml:"working_mode"`
	ExtraArgs   string `yaml:"extra_args" toml:"extra_args"` // Shell-quoted extra arguments
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Tool:     ToolConfig{CmPath: "cm"},
		LogLevel: "warn",
	}
}

// LoadFromFile reads path, a .toml file or YAML otherwise, on top of the
// defaults. A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies CMRUNNER_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	if v, ok := os.LookupEnv("CMRUNNER_CM_PATH"); ok {
		c.Tool.CmPath = v
	}
	if v := os.Getenv("CMRUNNER_INVARIANT_CULTURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Tool.UseInvariantCulture = b
		}
	}
	if v := os.Getenv("CMRUNNER_WORKSPACE"); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv(logger.EnvLogLevel); v != "" {
		if _, ok := logger.ParseLevel(v); ok {
			c.LogLevel = v
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, ok := logger.ParseLevel(c.LogLevel); !ok {
			return fmt.Errorf("invalid log_level: %s (must be error, warn, info, or debug)", c.LogLevel)
		}
	}
	if _, err := tool.ParseExtraArgs(c.Client.ExtraArgs); err != nil {
		return err
	}
	if strings.ContainsAny(c.Client.Server, " \t\n") {
		return errors.New("invalid server: must not contain whitespace")
	}
	return nil
}

// ToolOf returns the configured tool; an empty cm_path means unconfigured.
func (c *Config) ToolOf() tool.Tool {
	return tool.FromPath(c.Tool.CmPath, c.Tool.UseInvariantCulture)
}

// ClientArgs returns the client configuration appended to every command.
func (c *Config) ClientArgs() (tool.ClientConfig, error) {
	extra, err := tool.ParseExtraArgs(c.Client.ExtraArgs)
	if err != nil {
		return tool.ClientConfig{}, err
	}
	return tool.NewClientConfig(tool.ClientConfigOptions{
		Server:      c.Client.Server,
		Username:    c.Client.Username,
		Password:    c.Client.Password,
		WorkingMode: c.Client.WorkingMode,
		Extra:       extra,
	}), nil
}

// Level returns the configured log level, warn when unset.
func (c *Config) Level() logger.Level {
	if lvl, ok := logger.ParseLevel(c.LogLevel); ok {
		return lvl
	}
	return logger.WarnLevel
}
