// Package config loads the daemon's configuration from defaults, an
// optional config.yaml, and environment variable overrides, in that
// priority order (lowest to highest).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every daemon-wide setting moxxyd needs to boot.
type Config struct {
	DataDir      string             `mapstructure:"dataDir"`
	Server       ServerConfig       `mapstructure:"server"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the daemon's own listen address.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listenAddr"`
}

// OrchestratorConfig holds defaults for the worker assignment/parallelism
// algebra that aren't already carried per-agent in the agent_config table.
type OrchestratorConfig struct {
	ParallelismWarnThreshold int `mapstructure:"parallelismWarnThreshold"`
}

// LLMConfig holds provider-call defaults.
type LLMConfig struct {
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// LoggingConfig controls the daemon's structured logging output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("dataDir", filepath.Join(home, ".moxxy"))

	v.SetDefault("server.listenAddr", "127.0.0.1:7887")

	v.SetDefault("orchestrator.parallelismWarnThreshold", 5)

	v.SetDefault("llm.timeoutSeconds", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads configuration from defaults, `<configPath>/config.yaml` (or
// the current directory if configPath is empty), and MOXXY_-prefixed
// environment variables, in that priority order.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MOXXY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// camelCase config keys don't automatically map to the SNAKE_CASE env
	// vars AutomaticEnv expects, so bind the ones operators are most likely
	// to override explicitly.
	_ = v.BindEnv("dataDir", "MOXXY_DATA_DIR")
	_ = v.BindEnv("server.listenAddr", "MOXXY_LISTEN_ADDR")
	_ = v.BindEnv("logging.level", "MOXXY_LOG_LEVEL")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	var errs []string
	if cfg.DataDir == "" {
		errs = append(errs, "dataDir must not be empty")
	}
	if cfg.Orchestrator.ParallelismWarnThreshold <= 0 {
		errs = append(errs, "orchestrator.parallelismWarnThreshold must be positive")
	}
	if cfg.LLM.TimeoutSeconds <= 0 {
		errs = append(errs, "llm.timeoutSeconds must be positive")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
