package preprocess

import (
	"bufio"
	"encoding/csv"
	"path/filepath"
	"strconv"

	"go.uber.org/multierr"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
)

// ---------------------------------------------------------------------------
// Output tree
// ---------------------------------------------------------------------------

const (
	// CombinedSourcesFile lists every unique full-code record with its code
	// and source.
	CombinedSourcesFile = "combined_rxn_ec_sources.txt"
	// CombinedFile lists the unique records of one level.
	CombinedFile   = "combined.txt"
	experimentsDir = "experiments"
)

// LevelDir is the output directory of one EC level.
func LevelDir(root string, level int) string {
	return filepath.Join(root, experimentsDir, strconv.Itoa(level))
}

// SourceFile and TargetFile name the line-aligned split files.
func SourceFile(s Split) string { return "src-" + string(s) + ".txt" }
func TargetFile(s Split) string { return "tgt-" + string(s) + ".txt" }

// TokenizedPair is a rendered record.
type TokenizedPair struct {
	Record reaction.Record
	Source string
	Target string
}

// TreeWriter writes the preprocessing output tree.
type TreeWriter struct {
	root string
}

// NewTreeWriter returns a writer rooted at dir.
func NewTreeWriter(dir string) *TreeWriter {
	return &TreeWriter{root: dir}
}

// Root returns the output directory.
func (w *TreeWriter) Root() string { return w.root }

// WriteSources writes CombinedSourcesFile as rxn,ec,source rows.
func (w *TreeWriter) WriteSources(records []reaction.Record) (string, error) {
	if err := localfs.EnsureDir(w.root); err != nil {
		return "", err
	}
	path := filepath.Join(w.root, CombinedSourcesFile)
	err := localfs.WriteAtomic(path, func(bw *bufio.Writer) error {
		cw := csv.NewWriter(bw)
		for _, r := range records {
			if err := cw.Write([]string{r.String(), r.EC().String(), r.Source()}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	return path, err
}

// WriteLevel writes combined.txt and the six split files of one level.
// Pairs in parts must be line-aligned: source i belongs to target i.
func (w *TreeWriter) WriteLevel(level int, unique []reaction.Record, parts map[Split][]TokenizedPair) ([]string, error) {
	dir := LevelDir(w.root, level)
	if err := localfs.EnsureDir(dir); err != nil {
		return nil, err
	}

	var files []string
	combined := filepath.Join(dir, CombinedFile)
	err := localfs.WriteAtomic(combined, func(bw *bufio.Writer) error {
		for _, r := range unique {
			if _, err := bw.WriteString(r.String() + "\n"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	files = append(files, combined)

	for _, s := range AllSplits {
		src := filepath.Join(dir, SourceFile(s))
		tgt := filepath.Join(dir, TargetFile(s))
		pairs := parts[s]
		err := multierr.Combine(
			localfs.WriteAtomic(src, func(bw *bufio.Writer) error { return writeColumn(bw, pairs, true) }),
			localfs.WriteAtomic(tgt, func(bw *bufio.Writer) error { return writeColumn(bw, pairs, false) }),
		)
		if err != nil {
			return files, err
		}
		files = append(files, src, tgt)
	}
	return files, nil
}

func writeColumn(bw *bufio.Writer, pairs []TokenizedPair, source bool) error {
	for _, p := range pairs {
		line := p.Target
		if source {
			line = p.Source
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

//Personal.AI order the ending
