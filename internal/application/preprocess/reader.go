package preprocess

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// ---------------------------------------------------------------------------
// Input files
// ---------------------------------------------------------------------------

// RawRecord is one unparsed input line with its origin.
type RawRecord struct {
	Source   string
	Line     int
	Reaction string
	// EC comes from a CSV column; line inputs embed the code in Reaction.
	EC string
	// Oversized marks a line longer than localfs.MaxLineBytes.  Its text is
	// discarded and the record counts as a parse failure.
	Oversized bool
}

// SourceName is the provenance tag of a file: its base name without
// extension.
func SourceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadInput reads a reaction file.  Files ending in ".csv" are read by
// header, everything else line by line.
func ReadInput(ctx context.Context, path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOFailure(err, "cannot open input").WithDetail(path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return readCSV(ctx, f, path)
	}
	return readLines(ctx, f, path)
}

func readLines(ctx context.Context, r io.Reader, path string) ([]RawRecord, error) {
	return readLinesLimit(ctx, r, path, localfs.MaxLineBytes)
}

func readLinesLimit(ctx context.Context, r io.Reader, path string, limit int) ([]RawRecord, error) {
	source := SourceName(path)
	br := bufio.NewReaderSize(r, 64*1024)

	var out []RawRecord
	line := 0
	for {
		b, fits, err := nextLine(br, limit)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.IOFailure(err, "cannot read input").WithDetail(path)
		}
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !fits {
			out = append(out, RawRecord{Source: source, Line: line, Oversized: true})
			continue
		}
		text := strings.TrimSpace(string(b))
		if text == "" {
			continue
		}
		out = append(out, RawRecord{Source: source, Line: line, Reaction: text})
	}
	return out, nil
}

// nextLine returns the next line without its terminator.  A line longer than
// limit is drained and returned with fits false.
func nextLine(br *bufio.Reader, limit int) (line []byte, fits bool, err error) {
	fits = true
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			return nil, fits, err
		}
		if fits {
			if len(line)+len(chunk) > limit {
				fits, line = false, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !more {
			return line, fits, nil
		}
	}
}

func readCSV(ctx context.Context, r io.Reader, path string) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.IOFailure(err, "cannot read csv header").WithDetail(path)
	}
	rxnCol, ecCol, srcCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "rxn", "reaction", "rxn_str":
			rxnCol = i
		case "ec":
			ecCol = i
		case "source":
			srcCol = i
		}
	}
	if rxnCol < 0 {
		return nil, errors.IOFailure(nil, "csv input has no rxn or reaction column").WithDetail(path)
	}

	source := SourceName(path)
	var out []RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.IOFailure(err, "cannot read csv row").WithDetail(path)
		}
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec := RawRecord{Source: source, Line: line, Reaction: field(row, rxnCol), EC: field(row, ecCol)}
		if s := field(row, srcCol); s != "" {
			rec.Source = s
		}
		if rec.Reaction == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadList reads an exclusion list.  Lines starting with "//" are comments
// and a trailing "// ..." is dropped from entries.
func ReadList(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.IOFailure(err, "cannot open list").WithDetail(path)
	}
	defer f.Close()
	return parseList(f, path)
}

func parseList(r io.Reader, path string) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), localfs.MaxLineBytes)
	for sc.Scan() {
		text := sc.Text()
		if strings.HasPrefix(text, "//") {
			continue
		}
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.IOFailure(err, "cannot read list").WithDetail(path)
	}
	return out, nil
}

//Personal.AI order the ending
