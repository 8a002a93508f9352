// Package config loads the fixed, enumerated environment configuration
// surface for the retrieval engine and RAG orchestration layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies which LLM Gateway backend to construct.
type Provider string

const (
	ProviderNative       Provider = "native"
	ProviderOpenAICompat Provider = "openai-compat"
)

// LLMConfig configures the LLM Gateway (§4.5, §6).
type LLMConfig struct {
	Provider Provider
	Model    string
	APIKey   string
	BaseURL  string
}

// TracingConfig configures optional observability export. Absence
// disables tracing silently (§6 "Observability keys").
type TracingConfig struct {
	Endpoint    string
	ServiceName string
	Enabled     bool
}

// Timeouts holds the per-stage soft timeouts from §5.
type Timeouts struct {
	Translation time.Duration
	Retrieval   time.Duration
	Generation  time.Duration
}

// Config is the fixed configuration surface named in §6.
type Config struct {
	LLM            LLMConfig
	DataDir        string
	AllowedOrigins []string
	Tracing        TracingConfig
	Timeouts       Timeouts
}

// ConfigMissing is returned when a required, provider-specific value
// is absent. Per §7, this must fail startup loudly.
type ConfigMissing struct {
	Field string
}

func (e *ConfigMissing) Error() string {
	return fmt.Sprintf("config: missing required value %q", e.Field)
}

// Load reads the fixed environment surface and validates it. It never
// reads an on-disk file by itself; use LoadFile to layer a YAML
// override on top of the environment-derived defaults.
func Load() (*Config, error) {
	provider := Provider(getEnv("LLM_PROVIDER", string(ProviderNative)))
	if provider != ProviderNative && provider != ProviderOpenAICompat {
		return nil, &ConfigMissing{Field: "LLM_PROVIDER"}
	}

	model := getEnv("LLM_MODEL", "")
	if model == "" {
		return nil, &ConfigMissing{Field: "LLM_MODEL"}
	}

	apiKey, err := providerAPIKey(provider)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LLM: LLMConfig{
			Provider: provider,
			Model:    model,
			APIKey:   apiKey,
			BaseURL:  getEnv("LLM_BASE_URL", defaultBaseURL(provider)),
		},
		DataDir:        resolveDataDir(),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "legalrag-engine"),
		},
		Timeouts: Timeouts{
			Translation: getDurationEnv("TRANSLATION_TIMEOUT", 10*time.Second),
			Retrieval:   getDurationEnv("RETRIEVAL_TIMEOUT", 5*time.Second),
			Generation:  getDurationEnv("GENERATION_TIMEOUT", 30*time.Second),
		},
	}
	cfg.Tracing.Enabled = cfg.Tracing.Endpoint != ""

	return cfg, nil
}

// fileOverrides is the subset of Config a YAML file may override on
// top of the environment-derived defaults (§6 "Configuration layering").
// Only DataDir and AllowedOrigins are file-overridable; LLM credentials
// always come from the environment so secrets never land on disk.
type fileOverrides struct {
	DataDir        string   `yaml:"data_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LoadFile loads the environment-derived Config via Load, then layers
// a YAML file's values on top where present. A missing path is not an
// error: it behaves exactly like Load (§6 "file override is optional").
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	var overrides fileOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	if overrides.DataDir != "" {
		cfg.DataDir = overrides.DataDir
	}
	if len(overrides.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = overrides.AllowedOrigins
	}
	return cfg, nil
}

// providerAPIKey requires exactly one matching credential variable for
// the selected provider (§6).
func providerAPIKey(provider Provider) (string, error) {
	switch provider {
	case ProviderNative:
		key := getEnv("NATIVE_LLM_API_KEY", "")
		if key == "" {
			return "", &ConfigMissing{Field: "NATIVE_LLM_API_KEY"}
		}
		return key, nil
	case ProviderOpenAICompat:
		key := getEnv("OPENAI_COMPAT_API_KEY", "")
		if key == "" {
			return "", &ConfigMissing{Field: "OPENAI_COMPAT_API_KEY"}
		}
		return key, nil
	default:
		return "", &ConfigMissing{Field: "LLM_PROVIDER"}
	}
}

func defaultBaseURL(provider Provider) string {
	if provider == ProviderOpenAICompat {
		return "https://api.openai.com/v1"
	}
	return ""
}

// resolveDataDir picks DATA_DIR, falling back to a mounted path when
// present, else a repo-relative default (§6).
func resolveDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	const mounted = "/mnt/data"
	if info, err := os.Stat(mounted); err == nil && info.IsDir() {
		return mounted
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "data"
	}
	return filepath.Join(cwd, "data")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
