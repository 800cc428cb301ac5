package prometheus

import (
	"strconv"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
)

// PipelineMetrics holds the metrics of preprocessing and evaluation runs.  It
// satisfies preprocess.Recorder and evaluation.Recorder.
type PipelineMetrics struct {
	// Preprocessing
	RecordsParsed   CounterVec
	ParseFailures   CounterVec
	RecordsFiltered CounterVec
	RecordsWritten  CounterVec

	// Evaluation
	Accuracy GaugeVec

	// Structure cache
	NormalizerLookups GaugeVec

	// Runs
	RunDuration HistogramVec
	RunsTotal   CounterVec
}

// DefaultRunDurationBuckets covers runs from a second to several hours.
var DefaultRunDurationBuckets = []float64{1, 5, 15, 60, 300, 900, 1800, 3600, 7200, 14400}

// NewPipelineMetrics registers the pipeline metrics on collector.
func NewPipelineMetrics(collector MetricsCollector) *PipelineMetrics {
	m := &PipelineMetrics{}

	m.RecordsParsed = collector.RegisterCounter("records_parsed_total", "Reaction records parsed", "source")
	m.ParseFailures = collector.RegisterCounter("parse_failures_total", "Reaction records that failed to parse", "kind")
	m.RecordsFiltered = collector.RegisterCounter("records_filtered_total", "Reaction records rejected by a filter", "reason")
	m.RecordsWritten = collector.RegisterCounter("records_written_total", "Tokenized records written", "level", "split")

	m.Accuracy = collector.RegisterGauge("accuracy", "Top-N accuracy of the last evaluation", "type", "top", "ec")

	m.NormalizerLookups = collector.RegisterGauge("normalizer_lookups", "Structure normalizer lookups by result", "result")

	m.RunDuration = collector.RegisterHistogram("run_duration_seconds", "Wall time of a command", DefaultRunDurationBuckets, "command")
	m.RunsTotal = collector.RegisterCounter("runs_total", "Commands run", "command", "status")

	return m
}

func (m *PipelineMetrics) ObserveParsed(source string) {
	m.RecordsParsed.WithLabelValues(source).Inc()
}

func (m *PipelineMetrics) ObserveParseFailure(kind string) {
	m.ParseFailures.WithLabelValues(kind).Inc()
}

func (m *PipelineMetrics) ObserveFiltered(reason string) {
	m.RecordsFiltered.WithLabelValues(reason).Inc()
}

func (m *PipelineMetrics) ObserveWritten(level int, split string, n int) {
	m.RecordsWritten.WithLabelValues(strconv.Itoa(level), split).Add(float64(n))
}

func (m *PipelineMetrics) ObserveAccuracy(direction string, top int, class string, value float64) {
	m.Accuracy.WithLabelValues(direction, strconv.Itoa(top), class).Set(value)
}

// ObserveNormalizer publishes a snapshot of normalizer cache behaviour.
func (m *PipelineMetrics) ObserveNormalizer(stats molecule.NormalizerStats) {
	m.NormalizerLookups.WithLabelValues("hit").Set(float64(stats.Hits))
	m.NormalizerLookups.WithLabelValues("miss").Set(float64(stats.Misses))
	m.NormalizerLookups.WithLabelValues("remote_hit").Set(float64(stats.RemoteHits))
	m.NormalizerLookups.WithLabelValues("failure").Set(float64(stats.Failures))
}

// ObserveRun records one finished command.
func (m *PipelineMetrics) ObserveRun(command string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.RunsTotal.WithLabelValues(command, status).Inc()
	m.RunDuration.WithLabelValues(command).Observe(d.Seconds())
}

//Personal.AI order the ending
