package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as "30s", "2m" etc.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) { return []byte(time.Duration(d).String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds runtime parameters for promptbench.
// Zero values mean "unspecified" and are replaced by Defaults in Merge.
type Config struct {
	Addr           string   `json:"addr" yaml:"addr" toml:"addr"`
	Backend        string   `json:"backend" yaml:"backend" toml:"backend"`
	BackendURL     string   `json:"backend_url" yaml:"backend_url" toml:"backend_url"`
	APIKey         string   `json:"api_key" yaml:"api_key" toml:"api_key"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout" toml:"request_timeout"`
	ConnectTimeout Duration `json:"connect_timeout" yaml:"connect_timeout" toml:"connect_timeout"`
	PromptsSource  string   `json:"prompts_source" yaml:"prompts_source" toml:"prompts_source"`
	ModelsDir      string   `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	LlamaCtx       int      `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads   int      `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	MaxTokens      int      `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat      string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	CORSEnabled    *bool    `json:"cors_enabled,omitempty" yaml:"cors_enabled,omitempty" toml:"cors_enabled,omitempty"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes   int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Defaults returns the configuration used when nothing else is specified.
func Defaults() Config {
	return Config{
		Addr:           ":8080",
		Backend:        "ollama",
		RequestTimeout: Duration(5 * time.Minute),
		ConnectTimeout: Duration(5 * time.Second),
		PromptsSource:  "./public",
		ModelsDir:      "~/models/llm",
		LlamaCtx:       2048,
		LlamaThreads:   4,
		MaxTokens:      512,
		LogLevel:       "info",
		LogFormat:      "console",
		MaxBodyBytes:   1 << 20,
	}
}

// CORS reports whether CORS is enabled. Unset means disabled.
func (c Config) CORS() bool { return c.CORSEnabled != nil && *c.CORSEnabled }

// Bool returns a pointer to v, for explicit boolean overrides.
func Bool(v bool) *bool { return &v }

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

// Merge returns base with every non-zero field of over applied on top.
func Merge(base, over Config) Config {
	out := base
	if over.Addr != "" {
		out.Addr = over.Addr
	}
	if over.Backend != "" {
		out.Backend = over.Backend
	}
	if over.BackendURL != "" {
		out.BackendURL = over.BackendURL
	}
	if over.APIKey != "" {
		out.APIKey = over.APIKey
	}
	if over.RequestTimeout > 0 {
		out.RequestTimeout = over.RequestTimeout
	}
	if over.ConnectTimeout > 0 {
		out.ConnectTimeout = over.ConnectTimeout
	}
	if over.PromptsSource != "" {
		out.PromptsSource = over.PromptsSource
	}
	if over.ModelsDir != "" {
		out.ModelsDir = over.ModelsDir
	}
	if over.LlamaCtx > 0 {
		out.LlamaCtx = over.LlamaCtx
	}
	if over.LlamaThreads > 0 {
		out.LlamaThreads = over.LlamaThreads
	}
	if over.MaxTokens > 0 {
		out.MaxTokens = over.MaxTokens
	}
	if over.LogLevel != "" {
		out.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		out.LogFormat = over.LogFormat
	}
	if over.CORSEnabled != nil {
		out.CORSEnabled = Bool(*over.CORSEnabled)
	}
	if len(over.CORSOrigins) > 0 {
		out.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	if over.MaxBodyBytes > 0 {
		out.MaxBodyBytes = over.MaxBodyBytes
	}
	return out
}

// EnvPrefix prefixes every environment override, e.g. PROMPTBENCH_ADDR.
const EnvPrefix = "PROMPTBENCH_"

// FromEnv reads overrides from the environment via lookup (os.LookupEnv in
// production). Malformed numeric or duration values are reported.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	get := func(key string) string {
		v, _ := lookup(EnvPrefix + key)
		return strings.TrimSpace(v)
	}
	cfg.Addr = get("ADDR")
	cfg.Backend = get("BACKEND")
	cfg.BackendURL = get("BACKEND_URL")
	cfg.APIKey = get("API_KEY")
	cfg.PromptsSource = get("PROMPTS_SOURCE")
	cfg.ModelsDir = get("MODELS_DIR")
	cfg.LogLevel = get("LOG_LEVEL")
	cfg.LogFormat = get("LOG_FORMAT")
	if v := get("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = SplitCSV(v)
	}
	if v := get("CORS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%sCORS_ENABLED: %w", EnvPrefix, err)
		}
		cfg.CORSEnabled = &b
	}
	for key, dst := range map[string]*Duration{"REQUEST_TIMEOUT": &cfg.RequestTimeout, "CONNECT_TIMEOUT": &cfg.ConnectTimeout} {
		if v := get(key); v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				return cfg, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
		}
	}
	for key, dst := range map[string]*int{"LLAMA_CTX": &cfg.LlamaCtx, "LLAMA_THREADS": &cfg.LlamaThreads, "MAX_TOKENS": &cfg.MaxTokens} {
		if v := get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}
	if v := get("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		cfg.MaxBodyBytes = n
	}
	return cfg, nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
