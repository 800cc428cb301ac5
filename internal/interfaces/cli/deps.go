package cli

import (
	"context"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/config"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/database/redis"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/minio"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// eventSource is the Source of every event the CLI emits.
const eventSource = "rbt"

// Dependencies builds the optional infrastructure of a run.  Each factory is
// called at most once per command and only when the config enables it.
type Dependencies struct {
	RemoteCache func(cfg *config.Config, log logging.Logger) (RemoteCache, error)
	Publisher   func(cfg *config.Config, log logging.Logger) (minio.Publisher, error)
	Events      func(cfg *config.Config, log logging.Logger) (kafka.RunEvents, error)
}

// RemoteCache is a shared structure cache that must be released after use.
type RemoteCache interface {
	molecule.RemoteCache
	Close() error
}

func (d Dependencies) withDefaults() Dependencies {
	if d.RemoteCache == nil {
		d.RemoteCache = newRedisCache
	}
	if d.Publisher == nil {
		d.Publisher = newMinIOPublisher
	}
	if d.Events == nil {
		d.Events = newKafkaEvents
	}
	return d
}

func newRedisCache(cfg *config.Config, log logging.Logger) (RemoteCache, error) {
	rc := cfg.Redis
	client, err := redis.NewClient(&rc, log)
	if err != nil {
		return nil, err
	}
	return redis.NewStructureCache(client, log, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL)), nil
}

func newMinIOPublisher(cfg *config.Config, log logging.Logger) (minio.Publisher, error) {
	mc := cfg.MinIO
	client, err := minio.NewMinIOClient(&mc, log)
	if err != nil {
		return nil, err
	}
	return minio.NewPublisher(client, log), nil
}

func newKafkaEvents(cfg *config.Config, log logging.Logger) (kafka.RunEvents, error) {
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	return kafka.NewRunEvents(producer, eventSource, log), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Run session
// ─────────────────────────────────────────────────────────────────────────────

// session holds what one command run shares: the config, a metrics registry,
// the structure normalizers and the optional shared cache.
type session struct {
	cli     *CLIContext
	deps    Dependencies
	command string
	logger  logging.Logger
	start   time.Time

	collector prometheus.MetricsCollector
	metrics   *prometheus.PipelineMetrics

	cache       RemoteCache
	cacheTried  bool
	normalizers map[bool]*molecule.Normalizer
}

func newSession(cli *CLIContext, deps Dependencies, command string) (*session, error) {
	mc := cli.Config.Metrics
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:       mc.Namespace,
		EnableGoMetrics: mc.EnableGoMetrics,
	}, cli.Logger)
	if err != nil {
		return nil, err
	}
	logger := cli.Logger.With(logging.String("run_id", cli.RunID))
	logger.Debug("run started", logging.String("command", command))
	return &session{
		cli:         cli,
		deps:        deps,
		command:     command,
		logger:      logger,
		start:       time.Now(),
		collector:   collector,
		metrics:     prometheus.NewPipelineMetrics(collector),
		normalizers: map[bool]*molecule.Normalizer{},
	}, nil
}

// remoteCache connects the shared cache on first use.  A cache that cannot
// be reached only costs speed, so the run continues without it.
func (s *session) remoteCache() molecule.RemoteCache {
	if !s.cacheTried {
		s.cacheTried = true
		if s.cli.Config.Redis.Enabled() {
			cache, err := s.deps.RemoteCache(s.cli.Config, s.logger)
			if err != nil {
				s.logger.Warn("shared structure cache unavailable", logging.Err(err))
			} else {
				s.cache = cache
			}
		}
	}
	if s.cache == nil {
		return nil
	}
	return s.cache
}

// normalizer returns the run's normalizer for the given stereo handling.
func (s *session) normalizer(isomeric bool) (*molecule.Normalizer, error) {
	if n, ok := s.normalizers[isomeric]; ok {
		return n, nil
	}
	n, err := molecule.NewNormalizer(molecule.NormalizerOptions{
		Isomeric:  isomeric,
		CacheSize: s.cli.Config.Normalizer.LRUSize,
	}, s.remoteCache(), s.logger)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "cannot build structure normalizer")
	}
	s.normalizers[isomeric] = n
	return n, nil
}

// publish uploads dir when requested.  It returns the bucket/prefix written,
// or "" when publishing is off.
func (s *session) publish(ctx context.Context, enabled bool, dir string) (string, error) {
	if !enabled {
		return "", nil
	}
	if !s.cli.Config.MinIO.Enabled() {
		return "", errors.InvalidConfig("--publish needs minio.endpoint to be configured")
	}
	publisher, err := s.deps.Publisher(s.cli.Config, s.logger)
	if err != nil {
		return "", err
	}
	res, err := publisher.Publish(ctx, minio.PublishRequest{Dir: dir, RunID: s.cli.RunID, Command: s.command})
	if err != nil {
		return "", err
	}
	return res.Bucket + "/" + res.Prefix, nil
}

// emit sends the completion event.  The outputs are already written at this
// point, so a broker failure is logged and the run still succeeds.
func (s *session) emit(send func(kafka.RunEvents) error) {
	if !s.cli.Config.Kafka.Enabled() {
		return
	}
	events, err := s.deps.Events(s.cli.Config, s.logger)
	if err != nil {
		s.logger.Warn("run events disabled", logging.Err(err))
		return
	}
	defer func() {
		if err := events.Close(); err != nil {
			s.logger.Warn("closing event producer", logging.Err(err))
		}
	}()
	if err := send(events); err != nil {
		s.logger.Warn("run event not delivered", logging.Err(err))
	}
}

// finish records the run outcome, exports metrics and releases the cache.
func (s *session) finish(runErr error) {
	s.metrics.ObserveRun(s.command, time.Since(s.start), runErr)
	for _, n := range s.normalizers {
		s.metrics.ObserveNormalizer(n.Stats())
	}
	if path := s.cli.Config.Metrics.Textfile; path != "" {
		if err := s.collector.WriteTextfile(path); err != nil {
			s.logger.Warn("metrics textfile not written", logging.Err(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn("closing structure cache", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
