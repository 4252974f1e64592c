// Package config loads the pipeline's feature-flag, timeframe-hierarchy,
// cache, and ML configuration, with environment-variable overrides taking
// precedence over a base JSON file — the teacher's Load/applyEnvOverrides
// idiom, trimmed to the signal-generation pipeline's own surface.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the root configuration the pipeline orchestrator depends on.
type Config struct {
	PipelineConfig           PipelineConfig           `json:"pipeline"`
	TimeframeHierarchyConfig TimeframeHierarchyConfig `json:"timeframe_hierarchy"`
	CacheConfig              CacheConfig              `json:"cache"`
	MLConfig                 MLConfig                 `json:"ml"`
	NewsFilterConfig         NewsFilterConfig         `json:"news_filter"`
	LoggingConfig            LoggingConfig            `json:"logging"`
	RedisConfig              RedisConfig              `json:"redis"`
}

// LoggingConfig controls the logging package's output shape.
type LoggingConfig struct {
	Level       string `json:"level"`        // DEBUG, INFO, WARN, ERROR
	Output      string `json:"output"`       // stdout, stderr, or file path
	JSONFormat  bool   `json:"json_format"`  // Output as JSON
	IncludeFile bool   `json:"include_file"` // Include file and line number
}

// RedisConfig configures the optional Redis-backed alternate signal cache.
type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// PipelineConfig carries the feature flags and thresholds §6 of the spec
// enumerates.
type PipelineConfig struct {
	UseBreakerBlocks    bool `json:"use_breaker_blocks"`
	UseMitigationBlocks bool `json:"use_mitigation_blocks"`
	UseSIBISSIB         bool `json:"use_sibi_ssib"`
	UseZoneExplanations bool `json:"use_zone_explanations"`
	UseCache            bool `json:"use_cache"`
	UseML               bool `json:"use_ml"`
	UseNewsFilter       bool `json:"use_news_filter"`
	UseStructureTP      bool `json:"use_structure_tp"`

	MinConfidence       float64 `json:"min_confidence"`         // default 60
	MinRiskReward       float64 `json:"min_risk_reward"`        // default 3.0
	MaxEntryDistancePct float64 `json:"max_entry_distance_pct"` // default 0.05
	MinSLDistancePct    float64 `json:"min_sl_distance_pct"`    // default 0.03

	TP1MinRiskReward float64 `json:"tp1_min_risk_reward"` // default 2.5
	TP2MinRiskReward float64 `json:"tp2_min_risk_reward"` // default 3.5
	TP3MinRiskReward float64 `json:"tp3_min_risk_reward"` // default 5.0

	ICTStrictSLValidation bool `json:"ict_strict_sl_validation"`
}

// TimeframeHierarchyConfig maps each entry timeframe to the confirmation
// and structure timeframes the MTF bias stages expect, plus the rules
// governing missing-timeframe penalties.
type TimeframeHierarchyConfig struct {
	Mapping map[string]TimeframeMapping `json:"mapping"`
	Rules   TimeframeHierarchyRules     `json:"rules"`
}

// TimeframeMapping is one entry timeframe's hierarchy.
type TimeframeMapping struct {
	EntryTF        string `json:"entry_tf"`
	ConfirmationTF string `json:"confirmation_tf"`
	StructureTF    string `json:"structure_tf"`
	HTFBiasTF      string `json:"htf_bias_tf"`
}

// TimeframeHierarchyRules governs penalties and fallback behavior when an
// expected timeframe is missing from the input bar dictionary.
type TimeframeHierarchyRules struct {
	ConfirmationPenaltyIfMissing float64 `json:"confirmation_penalty_if_missing"` // e.g. 0.15
	StructurePenaltyIfMissing    float64 `json:"structure_penalty_if_missing"`    // e.g. 0.25
	AllowFallbackTFs             bool    `json:"allow_fallback_tfs"`
}

// DefaultTimeframeHierarchy ships the default covering 1h/2h/4h/1d the spec
// requires.
func DefaultTimeframeHierarchy() TimeframeHierarchyConfig {
	return TimeframeHierarchyConfig{
		Mapping: map[string]TimeframeMapping{
			"1h": {EntryTF: "1h", ConfirmationTF: "4h", StructureTF: "1d", HTFBiasTF: "1d"},
			"2h": {EntryTF: "2h", ConfirmationTF: "4h", StructureTF: "1d", HTFBiasTF: "1d"},
			"4h": {EntryTF: "4h", ConfirmationTF: "1d", StructureTF: "1d", HTFBiasTF: "1d"},
			"1d": {EntryTF: "1d", ConfirmationTF: "1d", StructureTF: "1d", HTFBiasTF: "1d"},
		},
		Rules: TimeframeHierarchyRules{
			ConfirmationPenaltyIfMissing: 0.15,
			StructurePenaltyIfMissing:    0.25,
			AllowFallbackTFs:             true,
		},
	}
}

// CacheConfig configures the LRU+TTL signal cache.
type CacheConfig struct {
	TTLSeconds int `json:"cache_ttl_seconds"`
	MaxSize    int `json:"cache_max_size"`
}

// MLConfig configures the advisory ML hook.
type MLConfig struct {
	Enabled        bool    `json:"enabled"`
	MomentumWeight float64 `json:"momentum_weight"`
	TrendWeight    float64 `json:"trend_weight"`
	VolumeWeight   float64 `json:"volume_weight"`
}

// NewsFilterConfig holds the stage-12b news-sentiment weights and
// thresholds. The pipeline orchestrator runs no news-sentiment stage and
// does not read these values.
type NewsFilterConfig struct {
	CriticalWeight  float64 `json:"critical_weight"`  // 3x
	ImportantWeight float64 `json:"important_weight"` // 2x
	NormalWeight    float64 `json:"normal_weight"`    // 1x
	BlockBuyBelow   float64 `json:"block_buy_below"`  // -30
	BlockSellAbove  float64 `json:"block_sell_above"` // +30
}

// Default returns the spec's documented defaults for every threshold.
func Default() *Config {
	return &Config{
		PipelineConfig: PipelineConfig{
			UseBreakerBlocks:    true,
			UseMitigationBlocks: true,
			UseSIBISSIB:         true,
			UseZoneExplanations: true,
			UseCache:            true,
			UseML:               true,
			UseNewsFilter:       false,
			UseStructureTP:      true,
			MinConfidence:       60,
			MinRiskReward:       3.0,
			MaxEntryDistancePct: 0.05,
			MinSLDistancePct:    0.03,
			TP1MinRiskReward:    2.5,
			TP2MinRiskReward:    3.5,
			TP3MinRiskReward:    5.0,

			ICTStrictSLValidation: true,
		},
		TimeframeHierarchyConfig: DefaultTimeframeHierarchy(),
		CacheConfig:              CacheConfig{TTLSeconds: 300, MaxSize: 1000},
		MLConfig:                 MLConfig{Enabled: true, MomentumWeight: 0.4, TrendWeight: 0.35, VolumeWeight: 0.25},
		NewsFilterConfig: NewsFilterConfig{
			CriticalWeight: 3, ImportantWeight: 2, NormalWeight: 1,
			BlockBuyBelow: -30, BlockSellAbove: 30,
		},
		LoggingConfig: LoggingConfig{Level: "INFO", Output: "stdout", JSONFormat: true},
	}
}

// Load reads a base config.json if present, then applies environment
// overrides (which take precedence), grounded on the teacher's
// config/config.go Load/applyEnvOverrides two-phase idiom.
func Load() (*Config, error) {
	cfg, err := loadFromFile("config.json")
	if err != nil {
		cfg = Default()
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.PipelineConfig.MinConfidence = getEnvFloatOrDefault("PIPELINE_MIN_CONFIDENCE", cfg.PipelineConfig.MinConfidence)
	cfg.PipelineConfig.MinRiskReward = getEnvFloatOrDefault("PIPELINE_MIN_RISK_REWARD", cfg.PipelineConfig.MinRiskReward)
	cfg.PipelineConfig.MaxEntryDistancePct = getEnvFloatOrDefault("PIPELINE_MAX_ENTRY_DISTANCE_PCT", cfg.PipelineConfig.MaxEntryDistancePct)
	cfg.PipelineConfig.MinSLDistancePct = getEnvFloatOrDefault("PIPELINE_MIN_SL_DISTANCE_PCT", cfg.PipelineConfig.MinSLDistancePct)
	cfg.PipelineConfig.UseCache = getEnvOrDefault("PIPELINE_USE_CACHE", boolStr(cfg.PipelineConfig.UseCache)) == "true"
	cfg.PipelineConfig.UseML = getEnvOrDefault("PIPELINE_USE_ML", boolStr(cfg.PipelineConfig.UseML)) == "true"
	cfg.PipelineConfig.UseNewsFilter = getEnvOrDefault("PIPELINE_USE_NEWS_FILTER", boolStr(cfg.PipelineConfig.UseNewsFilter)) == "true"
	cfg.PipelineConfig.ICTStrictSLValidation = getEnvOrDefault("PIPELINE_ICT_STRICT_SL_VALIDATION", boolStr(cfg.PipelineConfig.ICTStrictSLValidation)) == "true"

	cfg.CacheConfig.TTLSeconds = getEnvIntOrDefault("CACHE_TTL_SECONDS", cfg.CacheConfig.TTLSeconds)
	cfg.CacheConfig.MaxSize = getEnvIntOrDefault("CACHE_MAX_SIZE", cfg.CacheConfig.MaxSize)

	cfg.RedisConfig.Enabled = getEnvOrDefault("REDIS_ENABLED", boolStr(cfg.RedisConfig.Enabled)) == "true"
	cfg.RedisConfig.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.RedisConfig.Address)
	cfg.RedisConfig.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.RedisConfig.Password)
	cfg.RedisConfig.DB = getEnvIntOrDefault("REDIS_DB", cfg.RedisConfig.DB)
	cfg.RedisConfig.PoolSize = getEnvIntOrDefault("REDIS_POOL_SIZE", cfg.RedisConfig.PoolSize)

	cfg.LoggingConfig.Level = getEnvOrDefault("LOG_LEVEL", cfg.LoggingConfig.Level)
	cfg.LoggingConfig.Output = getEnvOrDefault("LOG_OUTPUT", cfg.LoggingConfig.Output)
	cfg.LoggingConfig.JSONFormat = getEnvOrDefault("LOG_JSON", boolStr(cfg.LoggingConfig.JSONFormat)) == "true"
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func loadFromFile(filename string) (*Config, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
