package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultLRUSize = 100_000

	DefaultMaxProducts    = 1
	DefaultMinAtomCount   = 4
	DefaultAtomCountScope = "products"
	DefaultExclusionMode  = "drop-record"
	DefaultValidRatio     = 0.05
	DefaultTestRatio      = 0.05

	DefaultNBestFW      = 5
	DefaultNBestBW      = 10
	DefaultNBestRTR     = 1
	DefaultLayout       = "stacked"
	DefaultDelimiter    = "\t"
	DefaultECPredLevel  = 3
	DefaultGroupByLevel = 1

	DefaultRedisPrefix = "rbt:smiles:"
	DefaultRedisTTL    = 7 * 24 * time.Hour

	DefaultMinIOBucket = "rbt-datasets"

	DefaultMetricsNamespace = "rbt"

	// MaxECLevel is the depth of a full enzyme commission number.
	MaxECLevel = 4
)

var DefaultLevels = []int{3}

// defaults lists every key with its default.  Registering each key lets
// viper resolve RBT_* variables for keys absent from the file.
var defaults = map[string]interface{}{
	"log.level":  DefaultLogLevel,
	"log.format": DefaultLogFormat,

	"normalizer.isomeric": true,
	"normalizer.lru_size": DefaultLRUSize,
	"normalizer.workers":  0,

	"preprocess.levels":            DefaultLevels,
	"preprocess.max_products":      DefaultMaxProducts,
	"preprocess.min_atom_count":    DefaultMinAtomCount,
	"preprocess.atom_count_scope":  DefaultAtomCountScope,
	"preprocess.exclusion_mode":    DefaultExclusionMode,
	"preprocess.remove_precursors": true,
	"preprocess.bidirectional":     false,
	"preprocess.split_products":    false,
	"preprocess.valid_ratio":       DefaultValidRatio,
	"preprocess.test_ratio":        DefaultTestRatio,
	"preprocess.salt":              "",
	"preprocess.pattern_file":      "",
	"preprocess.molecule_file":     "",

	"evaluate.n_best_fw":      DefaultNBestFW,
	"evaluate.n_best_bw":      DefaultNBestBW,
	"evaluate.n_best_rtr":     DefaultNBestRTR,
	"evaluate.top_n_fw":       []int{1},
	"evaluate.top_n_bw":       []int{1},
	"evaluate.top_n_rtr":      []int{1},
	"evaluate.top_n_range":    false,
	"evaluate.layout":         DefaultLayout,
	"evaluate.delimiter":      DefaultDelimiter,
	"evaluate.ec_pred_level":  DefaultECPredLevel,
	"evaluate.group_by_level": DefaultGroupByLevel,
	"evaluate.name":           "",
	"evaluate.listings":       true,

	"redis.mode":     "standalone",
	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   DefaultRedisPrefix,
	"redis.ttl":      DefaultRedisTTL,

	"minio.endpoint":          "",
	"minio.access_key_id":     "",
	"minio.secret_access_key": "",
	"minio.use_ssl":           false,
	"minio.bucket":            DefaultMinIOBucket,
	"minio.prefix":            "",
	"minio.retention_days":    0,

	"kafka.brokers":      []string{},
	"kafka.acks":         "all",
	"kafka.topic_prefix": "",

	"metrics.textfile":          "",
	"metrics.namespace":         DefaultMetricsNamespace,
	"metrics.enable_go_metrics": false,
}

func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// ApplyDefaults fills zero-value fields that have no meaningful zero.  It
// covers configs built in code; loaded configs already carry viper defaults.
// Booleans are left alone since false is a valid setting.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Normalizer ────────────────────────────────────────────────────────────
	if cfg.Normalizer.LRUSize == 0 {
		cfg.Normalizer.LRUSize = DefaultLRUSize
	}

	// ── Preprocess ────────────────────────────────────────────────────────────
	p := &cfg.Preprocess
	if len(p.Levels) == 0 {
		p.Levels = append([]int(nil), DefaultLevels...)
	}
	if p.AtomCountScope == "" {
		p.AtomCountScope = DefaultAtomCountScope
	}
	if p.ExclusionMode == "" {
		p.ExclusionMode = DefaultExclusionMode
	}

	// ── Evaluate ──────────────────────────────────────────────────────────────
	e := &cfg.Evaluate
	if e.NBestFW == 0 {
		e.NBestFW = DefaultNBestFW
	}
	if e.NBestBW == 0 {
		e.NBestBW = DefaultNBestBW
	}
	if e.NBestRTR == 0 {
		e.NBestRTR = DefaultNBestRTR
	}
	if len(e.TopNFW) == 0 {
		e.TopNFW = []int{1}
	}
	if len(e.TopNBW) == 0 {
		e.TopNBW = []int{1}
	}
	if len(e.TopNRTR) == 0 {
		e.TopNRTR = []int{1}
	}
	if e.Layout == "" {
		e.Layout = DefaultLayout
	}
	if e.Delimiter == "" {
		e.Delimiter = DefaultDelimiter
	}
	if e.ECPredLevel == 0 {
		e.ECPredLevel = DefaultECPredLevel
	}
	if e.GroupByLevel == 0 {
		e.GroupByLevel = DefaultGroupByLevel
	}

	// ── Infrastructure ────────────────────────────────────────────────────────
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = DefaultRedisTTL
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// Default returns a Config populated from defaults only.
func Default() *Config {
	cfg := &Config{
		Normalizer: NormalizerConfig{Isomeric: true},
		Preprocess: PreprocessConfig{
			MaxProducts:      DefaultMaxProducts,
			MinAtomCount:     DefaultMinAtomCount,
			RemovePrecursors: true,
			ValidRatio:       DefaultValidRatio,
			TestRatio:        DefaultTestRatio,
		},
		Evaluate: EvaluateConfig{Listings: true},
	}
	cfg.Redis.Mode = "standalone"
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
