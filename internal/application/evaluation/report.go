package evaluation

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/localfs"
)

// TableHeader is the header row of the accuracy table.
var TableHeader = []string{"metric", "type", "top", "ec", "value"}

// Result is the outcome of an evaluation run.
type Result struct {
	Records int
	// Skipped counts ground-truth records that could not be parsed.
	Skipped int
	// Directions lists what was scored; round-trip is absent without its
	// prediction file.
	Directions []Direction
	Rows       []AccuracyRow
	Listings   []Listing
	Files      []string
	Duration   time.Duration
}

// Accuracy looks up a single cell of the table.
func (r *Result) Accuracy(dir Direction, top int, class string) (float64, bool) {
	for _, row := range r.Rows {
		if row.Type == dir && row.Top == top && row.EC == class {
			return row.Value, true
		}
	}
	return 0, false
}

// ListingFile names the correct or incorrect listing of dir at cutoff n.
func ListingFile(correct bool, dir Direction, n int) string {
	kind := "incorrect"
	if correct {
		kind = "correct"
	}
	return fmt.Sprintf("%s_%s_%d.txt", kind, dir.Suffix(), n)
}

// WriteTable writes rows as <dir>/<name>.csv.
func WriteTable(dir, name string, rows []AccuracyRow) (string, error) {
	path := filepath.Join(dir, name+".csv")
	err := localfs.WriteAtomic(path, func(w *bufio.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(TableHeader); err != nil {
			return err
		}
		for _, r := range rows {
			rec := []string{r.Metric, string(r.Type), strconv.Itoa(r.Top), r.EC, strconv.FormatFloat(r.Value, 'g', -1, 64)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	return path, err
}

// WriteListings writes one correct and one incorrect file per listing.
// Incorrect lines are "truth,top1".
func WriteListings(dir string, listings []Listing) ([]string, error) {
	files := make([]string, 0, 2*len(listings))
	for _, l := range listings {
		correct := filepath.Join(dir, ListingFile(true, l.Direction, l.Top))
		if err := localfs.WriteAtomic(correct, func(w *bufio.Writer) error {
			for _, line := range l.Correct {
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return files, err
		}
		incorrect := filepath.Join(dir, ListingFile(false, l.Direction, l.Top))
		if err := localfs.WriteAtomic(incorrect, func(w *bufio.Writer) error {
			for _, pair := range l.Incorrect {
				if _, err := fmt.Fprintf(w, "%s,%s\n", pair[0], pair[1]); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return files, err
		}
		files = append(files, correct, incorrect)
	}
	return files, nil
}

//Personal.AI order the ending
