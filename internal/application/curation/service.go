// Package curation holds the small data tools that surround training and
// evaluation: re-canonicalizing backward predictions, extracting molecule
// lists with their enzyme classes, and scrambling enzyme codes for control
// experiments.
package curation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Report summarises one tool run.
type Report struct {
	// Lines is the number of input lines or records read.
	Lines int
	// Written is the number of output rows.
	Written int
	// Skipped counts inputs that could not be processed.  Canonicalize
	// copies them through unchanged; Extract leaves them out.
	Skipped  int
	Output   string
	Duration time.Duration
}

// Service runs the curation tools.
type Service interface {
	Canonicalize(ctx context.Context, opts CanonicalizeOptions) (*Report, error)
	Extract(ctx context.Context, opts ExtractOptions) (*Report, error)
	RandomizeEC(ctx context.Context, opts RandomizeOptions) (*Report, error)
}

type serviceImpl struct {
	parser *reaction.Parser
	logger logging.Logger
}

// NewService creates a curation Service.  logger may be nil.
func NewService(parser *reaction.Parser, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{parser: parser, logger: logger.Named("curation")}
}

func (s *serviceImpl) done(tool string, r *Report, start time.Time) *Report {
	r.Duration = time.Since(start)
	s.logger.Info(tool+" completed",
		logging.Int("lines", r.Lines),
		logging.Int("written", r.Written),
		logging.Int("skipped", r.Skipped),
		logging.String("output", r.Output),
		logging.Duration("duration", r.Duration))
	return r
}

// splitPrediction separates a tokenized source line into plain SMILES and
// enzyme tokens.  The enzyme part starts at the first "[v"; pipes are
// dropped.
func splitPrediction(line string) (smiles string, enzyme []string) {
	plain := strings.ReplaceAll(line, " ", "")
	idx := strings.Index(plain, "[v")
	if idx < 0 {
		return strings.ReplaceAll(plain, reaction.PipeToken, ""), nil
	}
	smiles = strings.ReplaceAll(plain[:idx], reaction.PipeToken, "")
	enzyme = strings.Fields(strings.ReplaceAll(plain[idx:], "][", "] ["))
	return smiles, enzyme
}

// joinSource renders reactant tokens and enzyme tokens as a source line.
func joinSource(reactants, enzyme []string, pipe bool) string {
	parts := append([]string(nil), reactants...)
	if len(enzyme) > 0 {
		if pipe {
			parts = append(parts, reaction.PipeToken)
		}
		parts = append(parts, enzyme...)
	}
	return strings.Join(parts, " ")
}

// canonicalSide normalizes a dot-separated molecule list into sorted,
// de-duplicated canonical SMILES.
func (s *serviceImpl) canonicalSide(ctx context.Context, smiles string) (string, error) {
	if smiles == "" {
		return "", errors.New(errors.CodeReactionEmptySide, "no molecules")
	}
	var out []string
	for _, frag := range strings.Split(smiles, ".") {
		m, err := s.parser.Normalizer().Normalize(ctx, frag)
		if err != nil {
			return "", err
		}
		out = append(out, m.SMILES())
	}
	sort.Strings(out)
	return strings.Join(lo.Uniq(out), "."), nil
}

//Personal.AI order the ending
