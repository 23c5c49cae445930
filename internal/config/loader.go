package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// Model selection. ModelPath is tried first; when it does not exist on
	// disk, Model (a remote model id) is used instead.
	ModelPath  string `json:"model_path" yaml:"model_path" toml:"model_path"`
	Model      string `json:"model" yaml:"model" toml:"model"`
	Device     string `json:"device" yaml:"device" toml:"device"`
	UseLingua2 *bool  `json:"use_lingua2" yaml:"use_lingua2" toml:"use_lingua2"`

	// Pool tuning.
	PoolSize              int `json:"pool_size" yaml:"pool_size" toml:"pool_size"`
	AcquireTimeoutSeconds int `json:"acquire_timeout_seconds" yaml:"acquire_timeout_seconds" toml:"acquire_timeout_seconds"`
	PollIntervalMS        int `json:"poll_interval_ms" yaml:"poll_interval_ms" toml:"poll_interval_ms"`

	// Compression backend: llama or heuristic.
	Backend      string `json:"backend" yaml:"backend" toml:"backend"`
	LlamaCtx     int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	GPULayers    int    `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`

	// HTTP server tuning.
	MaxBodyBytes           int64   `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	IdleTimeoutSeconds     int     `json:"idle_timeout_seconds" yaml:"idle_timeout_seconds" toml:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int     `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds"`
	ThrottleRPS            float64 `json:"throttle_rps" yaml:"throttle_rps" toml:"throttle_rps"`
	ThrottleBurst          int     `json:"throttle_burst" yaml:"throttle_burst" toml:"throttle_burst"`

	// CORS (opt-in). Origins/methods/headers are comma-separated.
	CORSEnabled bool   `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	CORSMethods string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods"`
	CORSHeaders string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers"`

	// Logging.
	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
