package evaluation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/testutil"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

const (
	amidaseSrc = "C C ( N ) = O . O | [v3] [u5] [t1] [q4]"
	amidaseTgt = "C C ( = O ) O"
	adhSrc     = "C C C C O | [v1] [u1] [t1] [q1]"
	adhTgt     = "C C C C = O"
)

func writeFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, path)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func recordWithEC(t *testing.T, ec reaction.EnzymeCode) reaction.Record {
	t.Helper()
	n, err := molecule.NewNormalizer(molecule.NormalizerOptions{Isomeric: true}, nil, nil)
	require.NoError(t, err)
	r, err := reaction.NewParser(n).Parse(context.Background(), "CCCCO>>CCCC=O", "test")
	require.NoError(t, err)
	return r.WithEC(ec)
}

func testOptions(dir string) Options {
	o := DefaultOptions()
	o.Dir = dir
	o.NBestFW = 3
	o.NBestBW = 2
	o.TopNFW = []int{1, 2, 3}
	o.TopNBW = []int{1, 2}
	o.TopNRTR = []int{1, 2}
	o.Workers = 2
	return o
}

func evaluate(t *testing.T, opts Options) *Result {
	t.Helper()
	res, err := NewService(nil, nil, nil).Evaluate(context.Background(), opts)
	require.NoError(t, err)
	return res
}

func TestEvaluate_UnparseableTopCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc)
	writeFile(t, dir, TargetTestFile, amidaseTgt)
	writeFile(t, dir, ForwardPredFile, "C C ( = O ) O H", "C C ( = O ) O", "C C O")
	writeFile(t, dir, BackwardPredFile, amidaseSrc, "C C O | [v3] [u5] [t1] [q4]")

	res := evaluate(t, testOptions(dir))
	for n, want := range map[int]float64{1: 0, 2: 1, 3: 1} {
		got, ok := res.Accuracy(Forward, n, AllClasses)
		require.True(t, ok, "top-%d", n)
		assert.Equal(t, want, got, "top-%d", n)
	}
	assert.Equal(t, []Direction{Forward, Backward, ECOnly}, res.Directions)

	incorrect := readLines(t, filepath.Join(dir, ListingFile(false, Forward, 1)))
	assert.Equal(t, []string{"CC(N)=O.O|3.5.1.4>>CC(=O)O,CC(N)=O.O|3.5.1.4>>CC(=O)OH"}, incorrect)
	assert.Equal(t, []string{"CC(N)=O.O|3.5.1.4>>CC(=O)O"}, readLines(t, filepath.Join(dir, ListingFile(true, Forward, 2))))
	assert.Empty(t, readLines(t, filepath.Join(dir, ListingFile(true, Forward, 1))))
}

func TestEvaluate_AllDirectionsGroupedByClass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc, adhSrc)
	writeFile(t, dir, TargetTestFile, amidaseTgt, adhTgt)
	writeFile(t, dir, ForwardPredFile,
		"C C O", "C C ( = O ) O", "C C O",
		"C C C C = O", "C C O", "C C O",
	)
	writeFile(t, dir, BackwardPredFile,
		amidaseSrc, "C C O | [v3] [u5] [t1] [q4]",
		"C C C O | [v1] [u1] [t1] [q2]", adhSrc,
	)
	writeFile(t, dir, RoundTripPredFile,
		"C C O", "C C ( = O ) O",
		"C C C C = O", "C C C = O",
	)

	opts := testOptions(dir)
	opts.Name = "results"
	rec := &captureRecorder{}
	logger := testutil.NewMockLogger()
	res, err := NewService(nil, rec, logger).Evaluate(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Records)
	assert.Zero(t, res.Skipped)
	assert.Equal(t, Directions, res.Directions)

	tests := []struct {
		dir   Direction
		top   int
		class string
		want  float64
	}{
		{Forward, 1, "1", 1},
		{Forward, 1, "3", 0},
		{Forward, 1, AllClasses, 0.5},
		{Forward, 2, AllClasses, 1},
		{Backward, 1, "1", 0},
		{Backward, 1, "3", 1},
		{Backward, 2, AllClasses, 1},
		{RoundTrip, 1, AllClasses, 0.5},
		{RoundTrip, 2, "3", 1},
		{ECOnly, 1, AllClasses, 1},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d/%s", tt.dir, tt.top, tt.class), func(t *testing.T) {
			got, ok := res.Accuracy(tt.dir, tt.top, tt.class)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	table := readLines(t, filepath.Join(dir, "results.csv"))
	require.NotEmpty(t, table)
	assert.Equal(t, "metric,type,top,ec,value", table[0])
	assert.Equal(t, "acc,forward,1,1,1", table[1])
	assert.Equal(t, "acc,forward,1,3,0", table[2])
	assert.Equal(t, "acc,forward,1,all,0.5", table[3])
	assert.Len(t, table, 1+len(res.Rows))

	ecCorrect := readLines(t, filepath.Join(dir, ListingFile(true, ECOnly, 1)))
	assert.Equal(t, []string{"3.5.1", "1.1.1"}, ecCorrect)

	assert.Contains(t, rec.values, "forward/1/all")
	assert.True(t, logger.HasMessage("info", "evaluation completed"))
	// 3 forward cutoffs, 2 each for the others, two files per cutoff.
	assert.Len(t, res.Files, 2*(3+2+2+2)+1)
}

func TestEvaluate_RoundTripIgnoresBackwardValidity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc)
	writeFile(t, dir, TargetTestFile, amidaseTgt)
	writeFile(t, dir, ForwardPredFile, amidaseTgt, amidaseTgt, amidaseTgt)
	writeFile(t, dir, BackwardPredFile, "C C ( N ) = O H | [v3] [u5] [t1] [q4]", "C C O | [v3] [u5] [t1] [q4]")
	writeFile(t, dir, RoundTripPredFile, amidaseTgt, amidaseTgt)

	res := evaluate(t, testOptions(dir))
	for n, want := range map[int]float64{1: 1, 2: 1} {
		got, ok := res.Accuracy(RoundTrip, n, AllClasses)
		require.True(t, ok, "top-%d", n)
		assert.Equal(t, want, got, "top-%d", n)
	}
	got, ok := res.Accuracy(Backward, 1, AllClasses)
	require.True(t, ok)
	assert.Zero(t, got)
}

func TestEvaluate_RoundTripTop1Listing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc)
	writeFile(t, dir, TargetTestFile, amidaseTgt)
	writeFile(t, dir, ForwardPredFile, amidaseTgt, amidaseTgt, amidaseTgt)
	writeFile(t, dir, BackwardPredFile, amidaseSrc, amidaseSrc)
	writeFile(t, dir, RoundTripPredFile, "C C O", "C C O")

	evaluate(t, testOptions(dir))
	incorrect := readLines(t, filepath.Join(dir, ListingFile(false, RoundTrip, 1)))
	assert.Equal(t, []string{"CC(N)=O.O|3.5.1.4>>CC(=O)O,CC(N)=O.O|3.5.1.4>>CCO"}, incorrect)
}

func TestWriteTable_FullPrecision(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteTable(dir, "acc", []AccuracyRow{
		{Metric: "acc", Type: Forward, Top: 1, EC: AllClasses, Value: 1.0 / 3},
		{Metric: "acc", Type: Backward, Top: 1, EC: AllClasses, Value: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"metric,type,top,ec,value",
		"acc,forward,1,all,0.3333333333333333",
		"acc,backward,1,all,1",
	}, readLines(t, path))
}

func TestEvaluate_DelimitedLayout(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc)
	writeFile(t, dir, TargetTestFile, amidaseTgt)
	writeFile(t, dir, ForwardPredFile, "C C O\tC C ( = O ) O")
	writeFile(t, dir, BackwardPredFile, amidaseSrc)

	opts := testOptions(dir)
	opts.Layout = LayoutDelimited
	res := evaluate(t, opts)

	got, _ := res.Accuracy(Forward, 1, AllClasses)
	assert.Equal(t, 0.0, got)
	got, _ = res.Accuracy(Forward, 3, AllClasses)
	assert.Equal(t, 1.0, got)
	got, _ = res.Accuracy(Backward, 1, AllClasses)
	assert.Equal(t, 1.0, got)
}

func TestEvaluate_UnparseableTruthIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, amidaseSrc, "C C ( | [v1]")
	writeFile(t, dir, TargetTestFile, amidaseTgt, "C C")
	writeFile(t, dir, ForwardPredFile, amidaseTgt, "C", "C", "C", "C", "C")
	writeFile(t, dir, BackwardPredFile, amidaseSrc, amidaseSrc, "C", "C")

	res := evaluate(t, testOptions(dir))
	assert.Equal(t, 1, res.Skipped)
	got, _ := res.Accuracy(Forward, 1, AllClasses)
	assert.Equal(t, 1.0, got)
}

func TestEvaluate_IsomericSwitch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceTestFile, "N [C@@H] ( C ) C ( = O ) O | [v5] [u1] [t1] [q1]")
	writeFile(t, dir, TargetTestFile, "N [C@H] ( C ) C ( = O ) O")
	writeFile(t, dir, ForwardPredFile, "N C ( C ) C ( = O ) O", "C", "C")
	writeFile(t, dir, BackwardPredFile, "C", "C")

	opts := testOptions(dir)
	opts.Listings = false
	res := evaluate(t, opts)
	got, _ := res.Accuracy(Forward, 1, AllClasses)
	assert.Equal(t, 0.0, got)

	opts.Isomeric = false
	res = evaluate(t, opts)
	got, _ = res.Accuracy(Forward, 1, AllClasses)
	assert.Equal(t, 1.0, got)
	assert.Empty(t, res.Files)
}

func TestEvaluate_Failures(t *testing.T) {
	t.Run("missing predictions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, SourceTestFile, amidaseSrc)
		writeFile(t, dir, TargetTestFile, amidaseTgt)
		_, err := NewService(nil, nil, nil).Evaluate(context.Background(), testOptions(dir))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
	})
	t.Run("short stacked file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, SourceTestFile, amidaseSrc)
		writeFile(t, dir, TargetTestFile, amidaseTgt)
		writeFile(t, dir, ForwardPredFile, amidaseTgt)
		writeFile(t, dir, BackwardPredFile, amidaseSrc, amidaseSrc)
		_, err := NewService(nil, nil, nil).Evaluate(context.Background(), testOptions(dir))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
	})
	t.Run("misaligned truth", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, SourceTestFile, amidaseSrc, adhSrc)
		writeFile(t, dir, TargetTestFile, amidaseTgt)
		_, err := NewService(nil, nil, nil).Evaluate(context.Background(), testOptions(dir))
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
	})
	t.Run("top-n above depth", func(t *testing.T) {
		opts := testOptions(t.TempDir())
		opts.TopNFW = []int{4}
		_, err := NewService(nil, nil, nil).Evaluate(context.Background(), opts)
		require.Error(t, err)
		assert.True(t, errors.IsConfigurationError(err))
	})
}

func TestOptions_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"no dir", func(o *Options) { o.Dir = "" }},
		{"n best zero", func(o *Options) { o.NBestRTR = 0 }},
		{"empty tops", func(o *Options) { o.TopNBW = nil }},
		{"top zero", func(o *Options) { o.TopNFW = []int{0} }},
		{"rtr above depth", func(o *Options) { o.TopNRTR = []int{5} }},
		{"ec level", func(o *Options) { o.ECPredLevel = 5 }},
		{"group level", func(o *Options) { o.GroupByLevel = 0 }},
		{"layout", func(o *Options) { o.Layout = "columns" }},
		{"delimiter", func(o *Options) { o.Layout, o.Delimiter = LayoutDelimited, "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := testOptions("d")
			tt.mutate(&o)
			err := o.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeConfigInvalid))
		})
	}
	assert.NoError(t, testOptions("d").Validate())
}

func TestOptions_Tops(t *testing.T) {
	o := testOptions("d")
	o.TopNBW = []int{2, 1}
	assert.Equal(t, []int{2, 1}, o.Tops(Backward))
	assert.Equal(t, []int{2, 1}, o.Tops(ECOnly))

	o.TopNRange = true
	assert.Equal(t, []int{1, 2}, o.Tops(Backward))
	assert.Equal(t, []int{1, 2, 3}, o.Tops(Forward))
}

func TestTally_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	codes := []string{"1.1.1.1", "2.7.1.1", "3.5.1.4"}
	js := make([]judgement, 200)
	for i := range js {
		hits := make([]bool, 10)
		for k := range hits {
			hits[k] = rng.Intn(6) == 0
		}
		ec := reaction.MustParseEnzymeCode(codes[rng.Intn(len(codes))])
		js[i] = judgement{
			truth: recordWithEC(t, ec),
			valid: true,
			byDir: map[Direction]verdicts{Backward: {hits: hits}},
		}
	}

	tops := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	rows, listings := tally(js, Backward, tops, 1)
	require.Len(t, listings, len(tops))

	prev := map[string]float64{}
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Value, prev[r.EC], "%s top-%d", r.EC, r.Top)
		prev[r.EC] = r.Value
	}
	for _, l := range listings {
		assert.Equal(t, len(js), len(l.Correct)+len(l.Incorrect))
	}
}

type captureRecorder struct {
	values []string
}

func (c *captureRecorder) ObserveAccuracy(direction string, top int, class string, _ float64) {
	c.values = append(c.values, fmt.Sprintf("%s/%d/%s", direction, top, class))
}

//Personal.AI order the ending
