// Package localfs holds the local file helpers shared by the batch tools:
// atomic whole-file writes and line-preserving reads.
package localfs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// MaxLineBytes bounds a single input line.
const MaxLineBytes = 4 * 1024 * 1024

// checkEvery is how many lines are read between context checks.
const checkEvery = 4096

// WriteAtomic fills a temporary file next to path and renames it onto path,
// so readers never observe a partially written file.
func WriteAtomic(path string, fill func(*bufio.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.IOFailure(err, "cannot create output file").WithDetail(path)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	err = multierr.Combine(tmp.Chmod(0o644), fill(bw), bw.Flush())
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return errors.IOFailure(err, "cannot write output file").WithDetail(path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.IOFailure(err, "cannot move output file into place").WithDetail(path)
	}
	return nil
}

// WriteLines writes one line per element.
func WriteLines(path string, lines []string) error {
	return WriteAtomic(path, func(w *bufio.Writer) error {
		for _, l := range lines {
			if _, err := w.WriteString(l + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReadLines returns every line of path with surrounding whitespace trimmed.
// Blank lines are kept so that line-aligned files stay aligned.
func ReadLines(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOFailure(err, "cannot open input file").WithDetail(path)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), MaxLineBytes)
	for sc.Scan() {
		if len(lines)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.IOFailure(err, "cannot read input file").WithDetail(path)
	}
	return lines, nil
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.IOFailure(err, "cannot create directory").WithDetail(dir)
	}
	return nil
}

//Personal.AI order the ending
