package evaluation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// File names inside an evaluation directory.
const (
	SourceTestFile    = "src-test.txt"
	TargetTestFile    = "tgt-test.txt"
	ForwardPredFile   = "tgt-pred.txt"
	BackwardPredFile  = "src-pred.txt"
	RoundTripPredFile = "tgt-pred-rtrp.txt"
)

// Dataset is the ground truth plus the candidate lists of every direction.
// Candidates are tokenized strings; a candidate slot with no prediction is
// the empty string.
type Dataset struct {
	Sources []string
	Targets []string

	Forward  [][]string
	Backward [][]string
	// RoundTrip is nil when no round-trip predictions exist.  Each record's
	// list holds NBestBW*NBestRTR candidates, backward-major.
	RoundTrip [][]string
}

// Len is the number of ground-truth records.
func (d *Dataset) Len() int { return len(d.Sources) }

// HasRoundTrip reports whether round-trip predictions were loaded.
func (d *Dataset) HasRoundTrip() bool { return d.RoundTrip != nil }

// Load reads the ground truth and predictions from opts.Dir.  Forward and
// backward predictions are required; round-trip predictions are optional.
func Load(ctx context.Context, opts Options) (*Dataset, error) {
	src, err := localfs.ReadLines(ctx, filepath.Join(opts.Dir, SourceTestFile))
	if err != nil {
		return nil, err
	}
	tgt, err := localfs.ReadLines(ctx, filepath.Join(opts.Dir, TargetTestFile))
	if err != nil {
		return nil, err
	}
	if len(src) != len(tgt) {
		return nil, errors.New(errors.CodeIOFailure,
			fmt.Sprintf("%s has %d lines but %s has %d", SourceTestFile, len(src), TargetTestFile, len(tgt)))
	}
	ds := &Dataset{Sources: src, Targets: tgt}

	if ds.Forward, err = loadPredictions(ctx, opts, ForwardPredFile, len(src), opts.NBestFW); err != nil {
		return nil, err
	}
	if ds.Backward, err = loadPredictions(ctx, opts, BackwardPredFile, len(src), opts.NBestBW); err != nil {
		return nil, err
	}

	rtrp := filepath.Join(opts.Dir, RoundTripPredFile)
	if _, statErr := os.Stat(rtrp); statErr == nil {
		if ds.RoundTrip, err = loadPredictions(ctx, opts, RoundTripPredFile, len(src), opts.NBestBW*opts.NBestRTR); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// loadPredictions groups a prediction file into depth candidates per record.
// A stacked file must hold at least records*depth lines.  A delimited line
// with fewer than depth fields is padded with empty candidates.
func loadPredictions(ctx context.Context, opts Options, name string, records, depth int) ([][]string, error) {
	path := filepath.Join(opts.Dir, name)
	lines, err := localfs.ReadLines(ctx, path)
	if err != nil {
		return nil, err
	}

	out := make([][]string, records)
	switch opts.Layout {
	case LayoutDelimited:
		if len(lines) < records {
			return nil, shortFile(path, len(lines), records)
		}
		for i := range out {
			fields := strings.Split(lines[i], opts.Delimiter)
			cands := make([]string, depth)
			for j := 0; j < depth && j < len(fields); j++ {
				cands[j] = strings.TrimSpace(fields[j])
			}
			out[i] = cands
		}
	default:
		if len(lines) < records*depth {
			return nil, shortFile(path, len(lines), records*depth)
		}
		for i := range out {
			out[i] = lines[i*depth : (i+1)*depth : (i+1)*depth]
		}
	}
	return out, nil
}

func shortFile(path string, got, want int) error {
	return errors.New(errors.CodeIOFailure,
		fmt.Sprintf("%s has %d lines, need %d", filepath.Base(path), got, want)).WithDetail(path)
}

//Personal.AI order the ending
