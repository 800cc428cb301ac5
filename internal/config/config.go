// Package config provides configuration loading, defaults, and validation for
// the rbt command line tools.
package config

import (
	"fmt"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/database/redis"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

// NormalizerConfig controls structure canonicalisation.
type NormalizerConfig struct {
	Isomeric bool `mapstructure:"isomeric"`
	LRUSize  int  `mapstructure:"lru_size"`
	// Workers bounds per-record parallelism; 0 uses every CPU.
	Workers int `mapstructure:"workers"`
}

// PreprocessConfig holds the `preprocess` section.
type PreprocessConfig struct {
	Levels           []int   `mapstructure:"levels"`
	MaxProducts      int     `mapstructure:"max_products"`
	MinAtomCount     int     `mapstructure:"min_atom_count"`
	AtomCountScope   string  `mapstructure:"atom_count_scope"`
	ExclusionMode    string  `mapstructure:"exclusion_mode"`
	RemovePrecursors bool    `mapstructure:"remove_precursors"`
	Bidirectional    bool    `mapstructure:"bidirectional"`
	SplitProducts    bool    `mapstructure:"split_products"`
	ValidRatio       float64 `mapstructure:"valid_ratio"`
	TestRatio        float64 `mapstructure:"test_ratio"`
	Salt             string  `mapstructure:"salt"`
	PatternFile      string  `mapstructure:"pattern_file"`
	MoleculeFile     string  `mapstructure:"molecule_file"`
}

// EvaluateConfig holds the `evaluate` section.
type EvaluateConfig struct {
	NBestFW      int    `mapstructure:"n_best_fw"`
	NBestBW      int    `mapstructure:"n_best_bw"`
	NBestRTR     int    `mapstructure:"n_best_rtr"`
	TopNFW       []int  `mapstructure:"top_n_fw"`
	TopNBW       []int  `mapstructure:"top_n_bw"`
	TopNRTR      []int  `mapstructure:"top_n_rtr"`
	TopNRange    bool   `mapstructure:"top_n_range"`
	Layout       string `mapstructure:"layout"`
	Delimiter    string `mapstructure:"delimiter"`
	ECPredLevel  int    `mapstructure:"ec_pred_level"`
	GroupByLevel int    `mapstructure:"group_by_level"`
	Name         string `mapstructure:"name"`
	Listings     bool   `mapstructure:"listings"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	// Textfile is the output path; empty disables export.
	Textfile        string `mapstructure:"textfile"`
	Namespace       string `mapstructure:"namespace"`
	EnableGoMetrics bool   `mapstructure:"enable_go_metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Redis, MinIO and Kafka are
// optional; each is disabled while its address list is empty.
type Config struct {
	Log        logging.LogConfig    `mapstructure:"log"`
	Normalizer NormalizerConfig     `mapstructure:"normalizer"`
	Preprocess PreprocessConfig     `mapstructure:"preprocess"`
	Evaluate   EvaluateConfig       `mapstructure:"evaluate"`
	Redis      redis.RedisConfig    `mapstructure:"redis"`
	MinIO      minio.MinIOConfig    `mapstructure:"minio"`
	Kafka      kafka.ProducerConfig `mapstructure:"kafka"`
	Metrics    MetricsConfig        `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

func invalid(format string, args ...interface{}) error {
	return errors.InvalidConfig("config: " + fmt.Sprintf(format, args...))
}

// Validate performs semantic validation of the fully-populated Config.  Checks
// that need command-line inputs run again in the application options.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return invalid("log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return invalid("log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Normalizer.LRUSize < 0 {
		return invalid("normalizer.lru_size must be >= 0, got %d", c.Normalizer.LRUSize)
	}
	if c.Normalizer.Workers < 0 {
		return invalid("normalizer.workers must be >= 0, got %d", c.Normalizer.Workers)
	}

	p := c.Preprocess
	for _, l := range p.Levels {
		if l < 1 || l > MaxECLevel {
			return invalid("preprocess.levels entry %d outside 1..%d", l, MaxECLevel)
		}
	}
	switch p.ExclusionMode {
	case "drop-record", "strip-products":
	default:
		return invalid("preprocess.exclusion_mode %q is invalid", p.ExclusionMode)
	}
	switch p.AtomCountScope {
	case "products", "both":
	default:
		return invalid("preprocess.atom_count_scope %q is invalid", p.AtomCountScope)
	}
	if p.ValidRatio < 0 || p.ValidRatio >= 1 || p.TestRatio < 0 || p.TestRatio >= 1 {
		return invalid("preprocess split ratios must be in [0,1), got valid=%g test=%g", p.ValidRatio, p.TestRatio)
	}
	if p.ValidRatio+p.TestRatio >= 1 {
		return invalid("preprocess valid+test ratio %g leaves no training data", p.ValidRatio+p.TestRatio)
	}

	e := c.Evaluate
	if e.NBestFW < 1 || e.NBestBW < 1 || e.NBestRTR < 1 {
		return invalid("evaluate.n_best_* must be >= 1")
	}
	switch e.Layout {
	case "stacked", "delimited":
	default:
		return invalid("evaluate.layout %q is invalid; expected stacked|delimited", e.Layout)
	}
	if e.ECPredLevel < 1 || e.ECPredLevel > MaxECLevel {
		return invalid("evaluate.ec_pred_level %d outside 1..%d", e.ECPredLevel, MaxECLevel)
	}
	if e.GroupByLevel < 1 || e.GroupByLevel > MaxECLevel {
		return invalid("evaluate.group_by_level %d outside 1..%d", e.GroupByLevel, MaxECLevel)
	}

	if c.Redis.Enabled() {
		switch c.Redis.Mode {
		case "", "standalone", "sentinel", "cluster":
		default:
			return invalid("redis.mode %q is invalid; expected standalone|sentinel|cluster", c.Redis.Mode)
		}
		if c.Redis.DB < 0 {
			return invalid("redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}
	if c.MinIO.Enabled() && c.MinIO.Bucket == "" {
		return invalid("minio.bucket is required when minio.endpoint is set")
	}
	if c.Kafka.Enabled() {
		if err := kafka.ValidateProducerConfig(c.Kafka); err != nil {
			return err
		}
	}
	if c.Metrics.Namespace == "" {
		return invalid("metrics.namespace is required")
	}
	return nil
}

//Personal.AI order the ending
