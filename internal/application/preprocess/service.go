package preprocess

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Recorder receives pipeline counters.  The Prometheus collector implements
// it; NopRecorder discards everything.
type Recorder interface {
	ObserveParsed(source string)
	ObserveParseFailure(kind string)
	ObserveFiltered(reason string)
	ObserveWritten(level int, split string, n int)
}

// NopRecorder is a Recorder that does nothing.
type NopRecorder struct{}

func (NopRecorder) ObserveParsed(string)            {}
func (NopRecorder) ObserveParseFailure(string)      {}
func (NopRecorder) ObserveFiltered(string)          {}
func (NopRecorder) ObserveWritten(int, string, int) {}

// Service runs preprocessing.
type Service interface {
	Run(ctx context.Context, opts Options) (*Report, error)
}

type serviceImpl struct {
	parser   *reaction.Parser
	recorder Recorder
	logger   logging.Logger
}

// NewService creates a preprocessing Service.  recorder and logger may be nil.
func NewService(parser *reaction.Parser, recorder Recorder, logger logging.Logger) Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{parser: parser, recorder: recorder, logger: logger.Named("preprocess")}
}

type outcome struct {
	record    reaction.Record
	rejection *Rejection
	err       error
}

// Run executes the whole pipeline.  Configuration errors abort before any
// input is read; a failing input file is logged and skipped.
func (s *serviceImpl) Run(ctx context.Context, opts Options) (*Report, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	filter, err := s.buildFilter(ctx, opts)
	if err != nil {
		return nil, err
	}

	report := newReport(opts.Inputs)
	var raws []RawRecord
	for _, in := range opts.Inputs {
		recs, err := ReadInput(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Error("input skipped", logging.String("path", in), logging.Err(err))
			report.InputErrors = multierr.Append(report.InputErrors, err)
			continue
		}
		s.logger.Info("input read", logging.String("path", in), logging.Int("records", len(recs)))
		raws = append(raws, recs...)
	}
	report.Read = len(raws)

	outcomes, err := s.process(ctx, raws, filter, opts.workers())
	if err != nil {
		return nil, err
	}

	kept := make([]reaction.Record, 0, len(outcomes))
	for i, o := range outcomes {
		raw := raws[i]
		switch {
		case o.err != nil:
			kind := FailureKind(o.err)
			report.ParseFailures[kind]++
			s.recorder.ObserveParseFailure(kind)
			s.logger.Debug("record skipped",
				logging.String("source", raw.Source), logging.Int("line", raw.Line), logging.Err(o.err))
		case o.rejection != nil:
			report.Parsed[raw.Source]++
			s.recorder.ObserveParsed(raw.Source)
			report.Filtered[o.rejection.Reason]++
			s.recorder.ObserveFiltered(string(o.rejection.Reason))
		default:
			report.Parsed[raw.Source]++
			s.recorder.ObserveParsed(raw.Source)
			report.Kept[raw.Source]++
			kept = append(kept, o.record)
		}
	}

	unique := Dedup(kept)
	bounded := ExpandAll(MaxProducts(opts.MaxProducts), unique)
	if n := len(unique) - len(bounded); n > 0 {
		report.Filtered[ReasonMaxProducts] += n
		for i := 0; i < n; i++ {
			s.recorder.ObserveFiltered(string(ReasonMaxProducts))
		}
	}
	report.Unique = len(bounded)

	writer := NewTreeWriter(opts.OutputDir)
	path, err := writer.WriteSources(bounded)
	if err != nil {
		return report, err
	}
	report.Files = append(report.Files, path)

	for _, level := range opts.Levels {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		lr, err := s.writeLevel(writer, opts, level, bounded, report)
		if err != nil {
			return report, err
		}
		report.Levels = append(report.Levels, lr)
		report.Files = append(report.Files, lr.Files...)
		s.logger.Info("level written",
			logging.Int("level", level),
			logging.Int("unique", lr.Unique),
			logging.Int("train", lr.Splits[SplitTrain]),
			logging.Int("valid", lr.Splits[SplitValid]),
			logging.Int("test", lr.Splits[SplitTest]))
	}

	report.Duration = time.Since(start)
	s.logger.Info("preprocessing completed",
		logging.Int("processed", report.Processed()),
		logging.Int("dropped_by_filter", report.Dropped()),
		logging.Int("parse_failed", report.Failed()),
		logging.Int("unique", report.Unique),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// process parses and filters every raw record in parallel.  Outcomes keep
// input order.
func (s *serviceImpl) process(ctx context.Context, raws []RawRecord, filter *Filter, workers int) ([]outcome, error) {
	const chunk = 256
	out := make([]outcome, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < len(raws); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(raws))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = s.processOne(gctx, raws[i], filter)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *serviceImpl) processOne(ctx context.Context, raw RawRecord, filter *Filter) outcome {
	if raw.Oversized {
		return outcome{err: errors.New(errors.CodeRecordTooLong, "line skipped").
			WithDetail(fmt.Sprintf("limit %d bytes", localfs.MaxLineBytes))}
	}
	rec, err := s.parser.ParseWithEC(ctx, raw.Reaction, raw.EC, raw.Source)
	if err != nil {
		return outcome{err: err}
	}
	rec, rej := filter.Apply(rec)
	if rej != nil {
		return outcome{rejection: rej}
	}
	return outcome{record: rec}
}

func (s *serviceImpl) writeLevel(w *TreeWriter, opts Options, level int, records []reaction.Record, report *Report) (LevelReport, error) {
	expanded := ExpandAll(NewExpander(opts, level), records)
	unique := Dedup(expanded)
	ratios := opts.Ratios()

	written := make([]reaction.Record, 0, len(unique))
	parts := make(map[Split][]TokenizedPair, len(AllSplits))
	for _, r := range unique {
		src, tgt, err := reaction.Lines(r)
		if err != nil {
			report.ParseFailures[FailureTokenize]++
			s.recorder.ObserveParseFailure(FailureTokenize)
			s.logger.Warn("record not tokenizable", logging.String("reaction", r.String()), logging.Err(err))
			continue
		}
		split := ratios.Assign(r)
		parts[split] = append(parts[split], TokenizedPair{Record: r, Source: src, Target: tgt})
		written = append(written, r)
	}

	files, err := w.WriteLevel(level, written, parts)
	if err != nil {
		return LevelReport{}, err
	}
	lr := LevelReport{
		Level:    level,
		Expanded: len(expanded),
		Unique:   len(written),
		Splits:   make(map[Split]int, len(AllSplits)),
		Files:    files,
	}
	for _, sp := range AllSplits {
		lr.Splits[sp] = len(parts[sp])
		s.recorder.ObserveWritten(level, string(sp), len(parts[sp]))
	}
	return lr, nil
}

// buildFilter loads and compiles the exclusion lists.  An invalid pattern is
// a configuration error; an unparseable exclusion molecule is skipped with a
// warning.
func (s *serviceImpl) buildFilter(ctx context.Context, opts Options) (*Filter, error) {
	patternSrc, err := ReadList(opts.PatternFile)
	if err != nil {
		return nil, err
	}
	patternSrc = append(patternSrc, opts.Patterns...)
	patterns := make([]*molecule.Pattern, 0, len(patternSrc))
	for _, p := range patternSrc {
		compiled, err := molecule.CompileQuery(p)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, compiled)
	}

	moleculeSrc, err := ReadList(opts.MoleculeFile)
	if err != nil {
		return nil, err
	}
	moleculeSrc = append(moleculeSrc, opts.Molecules...)
	molecules := make([]*molecule.Molecule, 0, len(moleculeSrc))
	for _, smi := range moleculeSrc {
		m, err := s.parser.Normalizer().Normalize(ctx, smi)
		if err != nil {
			s.logger.Warn("exclusion molecule ignored", logging.String("smiles", smi), logging.Err(err))
			continue
		}
		molecules = append(molecules, m)
	}

	s.logger.Debug("exclusions loaded", logging.Int("patterns", len(patterns)), logging.Int("molecules", len(molecules)))
	return NewFilter(opts.FilterOptions(), patterns, molecules), nil
}

//Personal.AI order the ending
