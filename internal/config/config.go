// Package config holds Mira's daemon configuration, loaded from a YAML
// file with environment-variable overrides applied once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all Mira daemon configuration.
type Config struct {
	Retention  RetentionConfig  `yaml:"retention"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Background BackgroundConfig `yaml:"background"`
	Hook       HookConfig       `yaml:"hook"`
	Fuzzy      FuzzyConfig      `yaml:"fuzzy"`
	IPC        IPCConfig        `yaml:"ipc"`
	Logging    LoggingConfig    `yaml:"logging"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	VersionPin string           `yaml:"version_pin"`
}

// MetricsConfig configures the supervisor's prometheus exporter. A
// blank Addr disables it; metrics are opt-in, not on by default.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// RetentionConfig maps table name -> retention policy in days.
// A days value of 0 means "skip with a warning", per spec §4.J.
type RetentionConfig struct {
	Days map[string]int `yaml:"days"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "ollama" | "genai" | "none"
	Dimensions int    `yaml:"dimensions"`
	MaxBatch   int    `yaml:"max_batch_size"`
	MaxConcurrent int `yaml:"max_concurrent"`
}

// BackgroundConfig configures the supervisor's slow lane cadence.
type BackgroundConfig struct {
	SlowLaneIntervalSecs   int `yaml:"slow_lane_interval_secs"`
	AdaptiveThresholdSecs  int `yaml:"adaptive_threshold_secs"`
	FastLaneIntervalMillis int `yaml:"fast_lane_interval_ms"`
	SQLMiningEveryNCycles  int `yaml:"sql_mining_every_n_cycles"`
	LLMEnhanceEveryNCycles int `yaml:"llm_enhance_every_n_cycles"`
	MaxRestarts            int `yaml:"max_restarts"`
}

// HookConfig maps hook event class -> timeout in milliseconds.
type HookConfig struct {
	TimeoutMs map[string]int `yaml:"timeout_ms"`
}

// FuzzyConfig configures the fuzzy subsearch.
type FuzzyConfig struct {
	Enabled    bool `yaml:"enabled"`
	TimeoutMs  int  `yaml:"timeout_ms"`
	CacheSize  int  `yaml:"cache_size"`
}

// IPCConfig configures the local duplex channel.
type IPCConfig struct {
	SocketPath  string `yaml:"socket_path"`
	MaxMessageBytes int `yaml:"max_message_bytes"`
}

// LoggingConfig mirrors mlog.Config for YAML decoding.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
}

// ScoringConfig exposes the composite-score weights as tuning knobs
// (spec Open Question 1) and the cross-project down-weight (Open
// Question 2), both defaulted to the spec's published values.
type ScoringConfig struct {
	RecencyWeight     float64 `yaml:"recency_weight"`
	SimilarityWeight  float64 `yaml:"similarity_weight"`
	SalienceWeight    float64 `yaml:"salience_weight"`
	ProjectMatchWeight float64 `yaml:"project_match_weight"`
	CrossProjectScore float64 `yaml:"cross_project_score"`
}

// Default returns Mira's out-of-the-box configuration.
func Default() Config {
	return Config{
		Retention: RetentionConfig{Days: map[string]int{
			"behavior_events": 60,
			"insights":        30,
			"observations":    30,
			"error_patterns":  90,
		}},
		Embedding: EmbeddingConfig{
			Provider:      "none",
			Dimensions:    768,
			MaxBatch:      64,
			MaxConcurrent: 4,
		},
		Background: BackgroundConfig{
			SlowLaneIntervalSecs:   30,
			AdaptiveThresholdSecs:  60,
			FastLaneIntervalMillis: 500,
			SQLMiningEveryNCycles:  3,
			LLMEnhanceEveryNCycles: 10,
			MaxRestarts:            5,
		},
		Hook: HookConfig{TimeoutMs: map[string]int{
			"default":        2000,
			"session_start":  3000,
			"session_end":    5000,
			"pre_tool_use":   1500,
			"post_tool_use":  1500,
		}},
		Fuzzy: FuzzyConfig{Enabled: true, TimeoutMs: 500, CacheSize: 2000},
		IPC:   IPCConfig{MaxMessageBytes: 1 << 20},
		Logging: LoggingConfig{DebugMode: false, Level: "info"},
		Scoring: ScoringConfig{
			RecencyWeight:      0.25,
			SimilarityWeight:   0.45,
			SalienceWeight:     0.15,
			ProjectMatchWeight: 0.15,
			CrossProjectScore:  0.3,
		},
	}
}

// Load reads YAML config from path, falling back to Default() if the file
// does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// recognizedEnvVars are the only MIRA_* variables Load will accept;
// anything else (including plausible-looking provider aliases) is
// rejected so typos fail loudly instead of being silently ignored.
var recognizedEnvVars = map[string]bool{
	"MIRA_EMBEDDING_PROVIDER":   true,
	"MIRA_EMBEDDING_DIMENSIONS": true,
	"MIRA_IPC_SOCKET_PATH":      true,
	"MIRA_FUZZY_ENABLED":        true,
	"MIRA_LOGGING_DEBUG":        true,
	"MIRA_VERSION_PIN":          true,
}

func applyEnvOverrides(cfg *Config) error {
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "MIRA_") {
			continue
		}
		if !recognizedEnvVars[name] {
			return fmt.Errorf("unrecognized environment variable %s", name)
		}
		switch name {
		case "MIRA_EMBEDDING_PROVIDER":
			cfg.Embedding.Provider = val
		case "MIRA_EMBEDDING_DIMENSIONS":
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			cfg.Embedding.Dimensions = n
		case "MIRA_IPC_SOCKET_PATH":
			cfg.IPC.SocketPath = val
		case "MIRA_FUZZY_ENABLED":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			cfg.Fuzzy.Enabled = b
		case "MIRA_LOGGING_DEBUG":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			cfg.Logging.DebugMode = b
		case "MIRA_VERSION_PIN":
			cfg.VersionPin = val
		}
	}
	return nil
}
