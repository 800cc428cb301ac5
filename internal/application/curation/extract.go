package curation

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"slices"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/preprocess"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Side selects which molecules Extract lists.
type Side string

const (
	SideProducts  Side = "products"
	SideReactants Side = "reactants"
)

// ExtractOptions configures Extract.
type ExtractOptions struct {
	Inputs []string
	Output string
	// Levels are the enzyme-code levels written in the second column.
	Levels []int
	Side   Side
}

// Validate reports configuration problems as CFG_001.
func (o ExtractOptions) Validate() error {
	if len(o.Inputs) == 0 || o.Output == "" {
		return errors.InvalidConfig("extract needs inputs and an output file")
	}
	if o.Side != SideProducts && o.Side != SideReactants {
		return errors.InvalidConfig(fmt.Sprintf("unknown side %q", o.Side))
	}
	if len(o.Levels) == 0 {
		return errors.InvalidConfig("at least one level is required")
	}
	for _, l := range o.Levels {
		if l < 1 || l > reaction.MaxECLevel {
			return errors.InvalidConfig(fmt.Sprintf("level %d outside 1..%d", l, reaction.MaxECLevel))
		}
	}
	return nil
}

// Extract writes one "smiles,ec_at_level,ec" row per molecule and level of
// every parseable record in the inputs.
func (s *serviceImpl) Extract(ctx context.Context, opts ExtractOptions) (*Report, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	report := &Report{Output: opts.Output}
	var rows [][]string
	for _, in := range opts.Inputs {
		raws, err := preprocess.ReadInput(ctx, in)
		if err != nil {
			return nil, err
		}
		report.Lines += len(raws)
		for _, raw := range raws {
			rec, err := s.parser.ParseWithEC(ctx, raw.Reaction, raw.EC, raw.Source)
			if err != nil {
				report.Skipped++
				s.logger.Debug("record skipped", logging.String("source", raw.Source), logging.Int("line", raw.Line), logging.Err(err))
				continue
			}
			rows = append(rows, extractRows(rec, opts)...)
		}
	}

	err := localfs.WriteAtomic(opts.Output, func(w *bufio.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
	if err != nil {
		return nil, err
	}
	report.Written = len(rows)
	return s.done("extract", report, start), nil
}

func extractRows(rec reaction.Record, opts ExtractOptions) [][]string {
	mols := rec.Products()
	if opts.Side == SideReactants {
		mols = rec.Reactants()
	}
	levels := slices.Clone(opts.Levels)
	slices.Sort(levels)

	rows := make([][]string, 0, len(mols)*len(levels))
	for _, m := range mols {
		rows = append(rows, moleculeRows(m, rec.EC(), levels)...)
	}
	return rows
}

func moleculeRows(m *molecule.Molecule, ec reaction.EnzymeCode, levels []int) [][]string {
	rows := make([][]string, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, []string{m.SMILES(), ec.Class(l), ec.String()})
	}
	return rows
}

//Personal.AI order the ending
