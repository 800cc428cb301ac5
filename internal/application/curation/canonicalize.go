package curation

import (
	"context"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// CanonicalizeOptions configures Canonicalize.
type CanonicalizeOptions struct {
	Input  string
	Output string
	// Pipe writes the pipe token between reactants and enzyme tokens.
	Pipe bool
}

// Canonicalize rewrites tokenized backward predictions so that their
// molecules are canonical and sorted.  Enzyme tokens are carried over.  A
// line that cannot be parsed is copied unchanged so the output stays aligned
// with the n-best input.
func (s *serviceImpl) Canonicalize(ctx context.Context, opts CanonicalizeOptions) (*Report, error) {
	start := time.Now()
	if opts.Input == "" || opts.Output == "" {
		return nil, errors.InvalidConfig("canonicalize needs an input and an output file")
	}
	lines, err := localfs.ReadLines(ctx, opts.Input)
	if err != nil {
		return nil, err
	}

	report := &Report{Lines: len(lines), Output: opts.Output}
	out := make([]string, len(lines))
	for i, line := range lines {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rewritten, err := s.canonicalizeLine(ctx, line, opts.Pipe)
		if err != nil {
			s.logger.Debug("prediction copied verbatim", logging.Int("line", i+1), logging.Err(err))
			out[i] = line
			report.Skipped++
			continue
		}
		out[i] = rewritten
	}

	if err := localfs.WriteLines(opts.Output, out); err != nil {
		return nil, err
	}
	report.Written = len(out)
	return s.done("canonicalize", report, start), nil
}

func (s *serviceImpl) canonicalizeLine(ctx context.Context, line string, pipe bool) (string, error) {
	smiles, enzyme := splitPrediction(line)
	canonical, err := s.canonicalSide(ctx, smiles)
	if err != nil {
		return "", err
	}
	tokens, err := reaction.TokenizeSMILES(canonical)
	if err != nil {
		return "", err
	}
	return joinSource(tokens, enzyme, pipe), nil
}

//Personal.AI order the ending
