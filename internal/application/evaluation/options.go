// Package evaluation scores model predictions against held-out reactions:
// forward (reactants to products), backward (products to reactants and
// enzyme code), round-trip (backward then forward) and enzyme-code only.
// Accuracy is reported per top-N cutoff and per enzyme class.
package evaluation

import (
	"fmt"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Layout is the shape of a prediction file.
type Layout string

const (
	// LayoutStacked holds n-best consecutive lines per record.
	LayoutStacked Layout = "stacked"
	// LayoutDelimited holds one line per record with candidates joined by
	// Options.Delimiter.
	LayoutDelimited Layout = "delimited"
)

// Options is the immutable configuration of an evaluation run.
type Options struct {
	// Dir holds src-test.txt, tgt-test.txt and the prediction files.  Result
	// files are written there as well.
	Dir string

	NBestFW  int
	NBestBW  int
	NBestRTR int

	TopNFW  []int
	TopNBW  []int
	TopNRTR []int
	// TopNRange expands each top-N list to 1..max.
	TopNRange bool

	Layout    Layout
	Delimiter string

	Isomeric     bool
	ECPredLevel  int
	GroupByLevel int

	// Name is the base name of the CSV table; empty skips the table.
	Name string
	// Listings writes correct_* and incorrect_* files.
	Listings bool

	Workers int
}

// DefaultOptions mirrors the defaults of the command line.
func DefaultOptions() Options {
	return Options{
		NBestFW:      5,
		NBestBW:      10,
		NBestRTR:     1,
		TopNFW:       []int{1},
		TopNBW:       []int{1},
		TopNRTR:      []int{1},
		Layout:       LayoutStacked,
		Delimiter:    "\t",
		Isomeric:     true,
		ECPredLevel:  3,
		GroupByLevel: 1,
		Listings:     true,
	}
}

// Validate reports the first configuration problem as a CFG_001 error.  A
// top-N larger than the number of candidates is rejected.
func (o Options) Validate() error {
	if o.Dir == "" {
		return errors.InvalidConfig("evaluation directory is required")
	}
	for name, n := range map[string]int{"n_best_fw": o.NBestFW, "n_best_bw": o.NBestBW, "n_best_rtr": o.NBestRTR} {
		if n < 1 {
			return errors.InvalidConfig(fmt.Sprintf("%s must be at least 1, got %d", name, n))
		}
	}
	checks := []struct {
		name  string
		tops  []int
		depth int
	}{
		{"top_n_fw", o.TopNFW, o.NBestFW},
		{"top_n_bw", o.TopNBW, o.NBestBW},
		{"top_n_rtr", o.TopNRTR, o.NBestBW * o.NBestRTR},
	}
	for _, c := range checks {
		if len(c.tops) == 0 {
			return errors.InvalidConfig(c.name + " must not be empty")
		}
		for _, n := range c.tops {
			if n < 1 || n > c.depth {
				return errors.InvalidConfig(fmt.Sprintf("%s %d outside 1..%d", c.name, n, c.depth))
			}
		}
	}
	if o.ECPredLevel < 1 || o.ECPredLevel > reaction.MaxECLevel {
		return errors.InvalidConfig(fmt.Sprintf("ec_pred_level %d outside 1..%d", o.ECPredLevel, reaction.MaxECLevel))
	}
	if o.GroupByLevel < 1 || o.GroupByLevel > reaction.MaxECLevel {
		return errors.InvalidConfig(fmt.Sprintf("group_by_level %d outside 1..%d", o.GroupByLevel, reaction.MaxECLevel))
	}
	switch o.Layout {
	case LayoutStacked:
	case LayoutDelimited:
		if o.Delimiter == "" {
			return errors.InvalidConfig("delimited layout needs a delimiter")
		}
	default:
		return errors.InvalidConfig(fmt.Sprintf("unknown prediction layout %q", o.Layout))
	}
	return nil
}

// Tops returns the cutoffs to score for d, expanded when TopNRange is set.
func (o Options) Tops(d Direction) []int {
	var tops []int
	switch d {
	case Forward:
		tops = o.TopNFW
	case RoundTrip:
		tops = o.TopNRTR
	default:
		tops = o.TopNBW
	}
	if !o.TopNRange {
		return tops
	}
	hi := 0
	for _, n := range tops {
		hi = max(hi, n)
	}
	out := make([]int, hi)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

//Personal.AI order the ending
