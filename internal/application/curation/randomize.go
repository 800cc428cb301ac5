package curation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// RandomizeMode selects how enzyme codes are reassigned.
type RandomizeMode string

const (
	// RandomizeSwap gives every line the code of a random other line.
	RandomizeSwap RandomizeMode = "swap"
	// RandomizeWithinClass draws from lines of the same top-level class.
	RandomizeWithinClass RandomizeMode = "within-class"
	// RandomizeShuffle permutes the codes across lines.
	RandomizeShuffle RandomizeMode = "shuffle"
)

// RandomizeOptions configures RandomizeEC.
type RandomizeOptions struct {
	Input  string
	Output string
	Pipe   bool
	Mode   RandomizeMode
	// Seed makes the assignment reproducible.
	Seed int64
}

// Validate reports configuration problems as CFG_001.
func (o RandomizeOptions) Validate() error {
	if o.Input == "" || o.Output == "" {
		return errors.InvalidConfig("randomize-ec needs an input and an output file")
	}
	switch o.Mode {
	case RandomizeSwap, RandomizeWithinClass, RandomizeShuffle:
		return nil
	default:
		return errors.InvalidConfig(fmt.Sprintf("unknown randomize mode %q", o.Mode))
	}
}

type sourceLine struct {
	reactants []string
	enzyme    []string
}

// class is the first enzyme token, e.g. "[v3]".
func (l sourceLine) class() string {
	if len(l.enzyme) == 0 {
		return ""
	}
	return l.enzyme[0]
}

// RandomizeEC reassigns the enzyme tokens of tokenized source lines while
// keeping their reactants.
func (s *serviceImpl) RandomizeEC(ctx context.Context, opts RandomizeOptions) (*Report, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	lines, err := localfs.ReadLines(ctx, opts.Input)
	if err != nil {
		return nil, err
	}

	parsed := make([]sourceLine, len(lines))
	for i, line := range lines {
		smiles, enzyme := splitPrediction(line)
		tokens, err := reaction.TokenizeSMILES(smiles)
		if err != nil {
			s.logger.Debug("reactants kept untokenized", logging.Int("line", i+1), logging.Err(err))
			tokens = []string{smiles}
		}
		parsed[i] = sourceLine{reactants: tokens, enzyme: enzyme}
	}

	assigned := reassign(parsed, opts.Mode, rand.New(rand.NewSource(opts.Seed)))
	out := make([]string, len(parsed))
	for i, l := range parsed {
		out[i] = joinSource(l.reactants, assigned[i], opts.Pipe)
	}
	if err := localfs.WriteLines(opts.Output, out); err != nil {
		return nil, err
	}
	return s.done("randomize-ec", &Report{Lines: len(lines), Written: len(out), Output: opts.Output}, start), nil
}

// reassign returns the enzyme tokens each line receives.
func reassign(lines []sourceLine, mode RandomizeMode, rng *rand.Rand) [][]string {
	out := make([][]string, len(lines))
	switch mode {
	case RandomizeShuffle:
		perm := rng.Perm(len(lines))
		for i, j := range perm {
			out[i] = lines[j].enzyme
		}
	case RandomizeWithinClass:
		byClass := map[string][]int{}
		for i, l := range lines {
			byClass[l.class()] = append(byClass[l.class()], i)
		}
		for i, l := range lines {
			pool := byClass[l.class()]
			out[i] = lines[pool[rng.Intn(len(pool))]].enzyme
		}
	default:
		for i := range lines {
			if len(lines) < 2 {
				out[i] = lines[i].enzyme
				continue
			}
			j := rng.Intn(len(lines) - 1)
			if j >= i {
				j++
			}
			out[i] = lines[j].enzyme
		}
	}
	return out
}

//Personal.AI order the ending
