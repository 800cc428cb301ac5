package preprocess

import (
	"bufio"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestReadInput_Lines(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "brenda.txt",
		"CCCCO|1.1.1.1>>CCCC=O",
		"",
		"  CC(N)=O.O|3.5.1.4>>CC(=O)O  ",
	)

	recs, err := ReadInput(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, RawRecord{Source: "brenda", Line: 1, Reaction: "CCCCO|1.1.1.1>>CCCC=O"}, recs[0])
	assert.Equal(t, 3, recs[1].Line)
	assert.Equal(t, "CC(N)=O.O|3.5.1.4>>CC(=O)O", recs[1].Reaction)
}

func TestReadLines_OversizedLineSkipped(t *testing.T) {
	in := strings.Join([]string{
		"CCO|1.1.1.1>>CC=O",
		strings.Repeat("C", 40) + "|1.1.1.1>>CC=O",
		"CCCO|1.1.1.1>>CCC=O",
	}, "\r\n")

	recs, err := readLinesLimit(context.Background(), strings.NewReader(in), "sabio.txt", 32)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, RawRecord{Source: "sabio", Line: 1, Reaction: "CCO|1.1.1.1>>CC=O"}, recs[0])
	assert.Equal(t, RawRecord{Source: "sabio", Line: 2, Oversized: true}, recs[1])
	assert.Equal(t, RawRecord{Source: "sabio", Line: 3, Reaction: "CCCO|1.1.1.1>>CCC=O"}, recs[2])
}

func TestNextLine_LongerThanBuffer(t *testing.T) {
	long := strings.Repeat("N", 100)
	br := bufio.NewReaderSize(strings.NewReader(long+"\nO\n"), 16)

	b, fits, err := nextLine(br, 200)
	require.NoError(t, err)
	assert.True(t, fits)
	assert.Equal(t, long, string(b))

	b, fits, err = nextLine(br, 200)
	require.NoError(t, err)
	assert.True(t, fits)
	assert.Equal(t, "O", string(b))

	_, _, err = nextLine(br, 200)
	assert.Equal(t, io.EOF, err)
}

func TestReadInput_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeTestFile(t, dir, "rhea.csv",
		"id,rxn,ec,source",
		"1,CCCCO>>CCCC=O,1.1.1.1,rhea-up",
		"2,CC(N)=O.O>>CC(=O)O,3.5.1.4,",
		"3,,1.1.1.1,",
	)

	recs, err := ReadInput(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, RawRecord{Source: "rhea-up", Line: 2, Reaction: "CCCCO>>CCCC=O", EC: "1.1.1.1"}, recs[0])
	assert.Equal(t, "rhea", recs[1].Source)
	assert.Equal(t, "3.5.1.4", recs[1].EC)
}

func TestReadInput_CSVWithoutReactionColumn(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "bad.csv", "a,b", "1,2")
	_, err := ReadInput(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
}

func TestReadInput_Missing(t *testing.T) {
	_, err := ReadInput(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIOFailure))
}

func TestReadInput_Cancelled(t *testing.T) {
	lines := make([]string, 5000)
	for i := range lines {
		lines[i] = "CCO|1.1.1.1>>CC=O"
	}
	path := writeTestFile(t, t.TempDir(), "big.txt", lines...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadInput(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseList(t *testing.T) {
	src := strings.Join([]string{
		"// cofactors",
		"O=P(O)(O)O // phosphate",
		"",
		"   ",
		"[NH4+]",
	}, "\n")
	got, err := parseList(strings.NewReader(src), "inline")
	require.NoError(t, err)
	assert.Equal(t, []string{"O=P(O)(O)O", "[NH4+]"}, got)

	none, err := ReadList("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "brenda", SourceName("/data/in/brenda.txt"))
	assert.Equal(t, "rhea.v2", SourceName("rhea.v2.csv"))
	assert.Equal(t, "plain", SourceName("plain"))
}

//Personal.AI order the ending
