package prometheus

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/evaluation"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/preprocess"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
)

var (
	_ preprocess.Recorder = (*PipelineMetrics)(nil)
	_ evaluation.Recorder = (*PipelineMetrics)(nil)
)

func newTestPipelineMetrics(t *testing.T) (*PipelineMetrics, MetricsCollector) {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "rbt"}, nil)
	require.NoError(t, err)
	return NewPipelineMetrics(c), c
}

func TestPipelineMetrics_PreprocessCounters(t *testing.T) {
	m, c := newTestPipelineMetrics(t)
	m.ObserveParsed("brenda")
	m.ObserveParsed("brenda")
	m.ObserveParsed("rhea")
	m.ObserveParseFailure(preprocess.FailureMolecule)
	m.ObserveFiltered(string(preprocess.ReasonPattern))
	m.ObserveWritten(3, "train", 40)
	m.ObserveWritten(3, "test", 2)

	expected := `
# HELP rbt_records_parsed_total Reaction records parsed
# TYPE rbt_records_parsed_total counter
rbt_records_parsed_total{source="brenda"} 2
rbt_records_parsed_total{source="rhea"} 1
# HELP rbt_records_written_total Tokenized records written
# TYPE rbt_records_written_total counter
rbt_records_written_total{level="3",split="test"} 2
rbt_records_written_total{level="3",split="train"} 40
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"rbt_records_parsed_total", "rbt_records_written_total"))

	n, err := testutil.GatherAndCount(c.Registry(), "rbt_parse_failures_total", "rbt_records_filtered_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPipelineMetrics_Accuracy(t *testing.T) {
	m, c := newTestPipelineMetrics(t)
	m.ObserveAccuracy("forward", 1, "all", 0.25)
	m.ObserveAccuracy("forward", 1, "all", 0.5)
	m.ObserveAccuracy("backward", 5, "3", 1)

	expected := `
# HELP rbt_accuracy Top-N accuracy of the last evaluation
# TYPE rbt_accuracy gauge
rbt_accuracy{ec="3",top="5",type="backward"} 1
rbt_accuracy{ec="all",top="1",type="forward"} 0.5
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected), "rbt_accuracy"))
}

func TestPipelineMetrics_NormalizerAndRuns(t *testing.T) {
	m, c := newTestPipelineMetrics(t)
	m.ObserveNormalizer(molecule.NormalizerStats{Hits: 7, Misses: 3, RemoteHits: 1})
	m.ObserveRun("preprocess", 2*time.Second, nil)
	m.ObserveRun("evaluate", time.Second, stderrors.New("boom"))

	expected := `
# HELP rbt_normalizer_lookups Structure normalizer lookups by result
# TYPE rbt_normalizer_lookups gauge
rbt_normalizer_lookups{result="failure"} 0
rbt_normalizer_lookups{result="hit"} 7
rbt_normalizer_lookups{result="miss"} 3
rbt_normalizer_lookups{result="remote_hit"} 1
# HELP rbt_runs_total Commands run
# TYPE rbt_runs_total counter
rbt_runs_total{command="evaluate",status="failure"} 1
rbt_runs_total{command="preprocess",status="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(c.Registry(), strings.NewReader(expected),
		"rbt_normalizer_lookups", "rbt_runs_total"))
}

//Personal.AI order the ending
