package preprocess

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ---------------------------------------------------------------------------
// Deduplication and split assignment
// ---------------------------------------------------------------------------

// Split is a data partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitValid Split = "valid"
	SplitTest  Split = "test"
)

// AllSplits lists the partitions in output order.
var AllSplits = []Split{SplitTrain, SplitValid, SplitTest}

// SplitRatios configures the partition sizes.  Train receives the rest.
type SplitRatios struct {
	Valid float64
	Test  float64
	// Salt reshuffles every assignment while staying deterministic.
	Salt string
}

// Validate rejects ratios outside [0,1) or summing to one or more.
func (s SplitRatios) Validate() error {
	if s.Valid < 0 || s.Valid >= 1 || s.Test < 0 || s.Test >= 1 {
		return errors.InvalidConfig(fmt.Sprintf("split ratios must be in [0,1), got valid=%g test=%g", s.Valid, s.Test))
	}
	if s.Valid+s.Test >= 1 {
		return errors.InvalidConfig(fmt.Sprintf("valid+test ratio %g leaves no training data", s.Valid+s.Test))
	}
	return nil
}

// unitHash maps key into [0,1) using the top 53 bits of xxhash64.
func unitHash(salt, key string) float64 {
	d := xxhash.New()
	_, _ = d.WriteString(salt)
	_, _ = d.WriteString(key)
	return float64(d.Sum64()>>11) / (1 << 53)
}

// Assign returns the partition of a record.  It depends only on the split
// key, so a record and its reverse always share a partition and input order
// has no influence.
func (s SplitRatios) Assign(r reaction.Record) Split {
	return s.AssignKey(r.SplitKey())
}

// AssignKey is Assign for a precomputed split key.
func (s SplitRatios) AssignKey(key string) Split {
	u := unitHash(s.Salt, key)
	switch {
	case u < s.Test:
		return SplitTest
	case u < s.Test+s.Valid:
		return SplitValid
	default:
		return SplitTrain
	}
}

// Dedup keeps the first record of every distinct Key, preserving order.
func Dedup(records []reaction.Record) []reaction.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]reaction.Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Partition assigns every record to a split, preserving relative order.
func Partition(records []reaction.Record, ratios SplitRatios) map[Split][]reaction.Record {
	out := make(map[Split][]reaction.Record, len(AllSplits))
	for _, s := range AllSplits {
		out[s] = nil
	}
	for _, r := range records {
		s := ratios.Assign(r)
		out[s] = append(out[s], r)
	}
	return out
}

//Personal.AI order the ending
