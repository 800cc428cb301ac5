// Package preprocess turns raw enzymatic reaction files into tokenized
// train/valid/test corpora, one output tree per requested EC level.
//
// The flow is ingest → parse → filter → expand → deduplicate → split →
// format → write.  Parsing and filtering run in parallel per record; the
// remaining steps need the whole record set and run on one goroutine.
package preprocess

import (
	"fmt"
	"runtime"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ExclusionMode selects how pattern and molecule exclusions act.
type ExclusionMode string

const (
	// ExclusionDropRecord drops a record when any of its molecules matches.
	ExclusionDropRecord ExclusionMode = "drop-record"
	// ExclusionStripProducts removes matching products for as long as more
	// than one product remains.
	ExclusionStripProducts ExclusionMode = "strip-products"
)

// AtomCountScope selects which sides the minimum atom count applies to.
type AtomCountScope string

const (
	AtomCountProducts AtomCountScope = "products"
	AtomCountBoth     AtomCountScope = "both"
)

// Options is the immutable configuration of one preprocessing run.
type Options struct {
	// Inputs are reaction files; ".csv" files are read by header.
	Inputs []string
	// OutputDir receives combined_rxn_ec_sources.txt and experiments/<level>.
	OutputDir string

	// PatternFile and MoleculeFile list exclusions, one per line.
	PatternFile  string
	MoleculeFile string
	// Patterns and Molecules are appended to the file contents.
	Patterns  []string
	Molecules []string

	ExclusionMode    ExclusionMode
	RemovePrecursors bool
	MinAtomCount     int
	AtomCountScope   AtomCountScope

	// Levels lists the EC depths to produce trees for.
	Levels []int
	// MaxProducts drops records with more products; 0 disables the cutoff.
	MaxProducts   int
	Bidirectional bool
	SplitProducts bool

	ValidRatio float64
	TestRatio  float64
	Salt       string

	Workers int
}

// DefaultOptions mirrors the defaults of the command line.
func DefaultOptions() Options {
	return Options{
		ExclusionMode:    ExclusionDropRecord,
		RemovePrecursors: true,
		MinAtomCount:     4,
		AtomCountScope:   AtomCountProducts,
		Levels:           []int{3},
		MaxProducts:      1,
		ValidRatio:       0.05,
		TestRatio:        0.05,
		Workers:          runtime.NumCPU(),
	}
}

// Validate reports the first configuration problem as a CFG_001 error.
func (o Options) Validate() error {
	if len(o.Inputs) == 0 {
		return errors.InvalidConfig("at least one input file is required")
	}
	if o.OutputDir == "" {
		return errors.InvalidConfig("output directory is required")
	}
	if len(o.Levels) == 0 {
		return errors.InvalidConfig("at least one EC level is required")
	}
	seen := map[int]bool{}
	for _, l := range o.Levels {
		if l < 1 || l > reaction.MaxECLevel {
			return errors.InvalidConfig(fmt.Sprintf("EC level %d outside 1..%d", l, reaction.MaxECLevel))
		}
		if seen[l] {
			return errors.InvalidConfig(fmt.Sprintf("EC level %d requested twice", l))
		}
		seen[l] = true
	}
	if o.MaxProducts < 0 {
		return errors.InvalidConfig("max products must not be negative")
	}
	if o.MinAtomCount < 0 {
		return errors.InvalidConfig("min atom count must not be negative")
	}
	switch o.ExclusionMode {
	case ExclusionDropRecord, ExclusionStripProducts:
	default:
		return errors.InvalidConfig(fmt.Sprintf("unknown exclusion mode %q", o.ExclusionMode))
	}
	switch o.AtomCountScope {
	case AtomCountProducts, AtomCountBoth:
	default:
		return errors.InvalidConfig(fmt.Sprintf("unknown atom count scope %q", o.AtomCountScope))
	}
	if err := o.Ratios().Validate(); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.InvalidConfig("workers must not be negative")
	}
	return nil
}

// Ratios extracts the split configuration.
func (o Options) Ratios() SplitRatios {
	return SplitRatios{Valid: o.ValidRatio, Test: o.TestRatio, Salt: o.Salt}
}

// FilterOptions extracts the filter configuration.
func (o Options) FilterOptions() FilterOptions {
	return FilterOptions{
		Mode:             o.ExclusionMode,
		RemovePrecursors: o.RemovePrecursors,
		MinAtomCount:     o.MinAtomCount,
		AtomCountScope:   o.AtomCountScope,
	}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

//Personal.AI order the ending
