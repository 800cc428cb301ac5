package preprocess

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/molecule"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
)

func newTestParser(t *testing.T) *reaction.Parser {
	t.Helper()
	n, err := molecule.NewNormalizer(molecule.NormalizerOptions{Isomeric: true, CacheSize: 256}, nil, nil)
	require.NoError(t, err)
	return reaction.NewParser(n)
}

func record(t *testing.T, line string) reaction.Record {
	t.Helper()
	r, err := newTestParser(t).Parse(context.Background(), line, "test")
	require.NoError(t, err, line)
	return r
}

func mol(t *testing.T, smiles string) *molecule.Molecule {
	t.Helper()
	m, err := molecule.Parse(smiles, true)
	require.NoError(t, err, smiles)
	return m
}

func keys(records []reaction.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.String()
	}
	return out
}

func writeTestFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readLinesOf(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, path)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

//Personal.AI order the ending
