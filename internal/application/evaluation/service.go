package evaluation

import (
	"context"
	"runtime"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
)

// Recorder receives accuracy values as they are computed.
type Recorder interface {
	ObserveAccuracy(direction string, top int, class string, value float64)
}

// NopRecorder discards accuracy values.
type NopRecorder struct{}

func (NopRecorder) ObserveAccuracy(string, int, string, float64) {}

// NormalizerFactory builds the structure normalizer for a run.  Evaluation
// chooses isomeric or non-isomeric comparison per run.
type NormalizerFactory func(isomeric bool) (*molecule.Normalizer, error)

// Service scores prediction files.
type Service interface {
	Evaluate(ctx context.Context, opts Options) (*Result, error)
}

type serviceImpl struct {
	normalizers NormalizerFactory
	recorder    Recorder
	logger      logging.Logger
}

// NewService creates an evaluation Service.  Any argument may be nil; a nil
// factory builds an in-process normalizer without a shared cache.
func NewService(normalizers NormalizerFactory, recorder Recorder, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if normalizers == nil {
		normalizers = func(isomeric bool) (*molecule.Normalizer, error) {
			return molecule.NewNormalizer(molecule.NormalizerOptions{Isomeric: isomeric}, nil, logger)
		}
	}
	return &serviceImpl{normalizers: normalizers, recorder: recorder, logger: logger.Named("evaluate")}
}

// Evaluate loads the dataset in opts.Dir, scores every direction and writes
// the table and listings next to the inputs.
func (s *serviceImpl) Evaluate(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	ds, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	normalizer, err := s.normalizers(opts.Isomeric)
	if err != nil {
		return nil, err
	}
	s.logger.Info("evaluation data loaded",
		logging.String("dir", opts.Dir),
		logging.Int("records", ds.Len()),
		logging.Bool("round_trip", ds.HasRoundTrip()),
		logging.Bool("isomeric", opts.Isomeric))

	sc := &scorer{parser: reaction.NewParser(normalizer), opts: opts}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	judgements, err := sc.judgeAll(ctx, ds, workers)
	if err != nil {
		return nil, err
	}

	res := &Result{Records: ds.Len()}
	for _, j := range judgements {
		if !j.valid {
			res.Skipped++
		}
	}
	if res.Skipped > 0 {
		s.logger.Warn("ground truth not parseable", logging.Int("records", res.Skipped))
	}

	for _, dir := range Directions {
		if dir == RoundTrip && !ds.HasRoundTrip() {
			continue
		}
		rows, listings := tally(judgements, dir, opts.Tops(dir), opts.GroupByLevel)
		res.Directions = append(res.Directions, dir)
		res.Rows = append(res.Rows, rows...)
		res.Listings = append(res.Listings, listings...)
		for _, r := range rows {
			s.recorder.ObserveAccuracy(string(r.Type), r.Top, r.EC, r.Value)
			if r.EC == AllClasses {
				s.logger.Info("accuracy",
					logging.String("type", string(r.Type)),
					logging.Int("top", r.Top),
					logging.Float64("value", r.Value),
					logging.Int("correct", r.Correct),
					logging.Int("total", r.Total))
			}
		}
	}

	if opts.Listings {
		files, err := WriteListings(opts.Dir, res.Listings)
		res.Files = append(res.Files, files...)
		if err != nil {
			return res, err
		}
	}
	if opts.Name != "" {
		path, err := WriteTable(opts.Dir, opts.Name, res.Rows)
		if err != nil {
			return res, err
		}
		res.Files = append(res.Files, path)
	}

	res.Duration = time.Since(start)
	s.logger.Info("evaluation completed",
		logging.Int("records", res.Records),
		logging.Int("skipped", res.Skipped),
		logging.Int("files", len(res.Files)),
		logging.Duration("duration", res.Duration))
	return res, nil
}

//Personal.AI order the ending
