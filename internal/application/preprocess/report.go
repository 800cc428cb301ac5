package preprocess

import (
	"sort"
	"time"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Failure kinds used in Report.ParseFailures and metrics labels.
const (
	FailureReaction = "reaction"
	FailureEnzyme   = "enzyme"
	FailureMolecule = "molecule"
	FailureTokenize = "tokenize"
	FailureOversize = "oversize"
	FailureOther    = "other"
)

// FailureKind classifies a per-record error by its code.
func FailureKind(err error) string {
	switch errors.GetCode(err) {
	case errors.CodeReactionMalformed, errors.CodeReactionEmptySide:
		return FailureReaction
	case errors.CodeEnzymeCodeInvalid:
		return FailureEnzyme
	case errors.CodeMoleculeInvalidSMILES, errors.ErrCodeMoleculeValenceViolation, errors.ErrCodeMoleculeUnsupportedFeature:
		return FailureMolecule
	case errors.ErrCodeTokenizedMalformed:
		return FailureTokenize
	case errors.CodeRecordTooLong:
		return FailureOversize
	default:
		return FailureOther
	}
}

// LevelReport describes one written EC level.
type LevelReport struct {
	Level    int           `json:"level"`
	Expanded int           `json:"expanded"`
	Unique   int           `json:"unique"`
	Splits   map[Split]int `json:"splits"`
	Files    []string      `json:"files"`
}

// Report summarises a preprocessing run.
type Report struct {
	Inputs        []string             `json:"inputs"`
	Read          int                  `json:"read"`
	Parsed        map[string]int       `json:"parsed"`
	ParseFailures map[string]int       `json:"parse_failures"`
	Filtered      map[FilterReason]int `json:"filtered"`
	Kept          map[string]int       `json:"kept"`
	Unique        int                  `json:"unique"`
	Levels        []LevelReport        `json:"levels"`
	Files         []string             `json:"files"`
	Duration      time.Duration        `json:"duration"`
	// InputErrors holds per-file IO failures; the other files still ran.
	InputErrors error `json:"-"`
}

func newReport(inputs []string) *Report {
	return &Report{
		Inputs:        inputs,
		Parsed:        map[string]int{},
		ParseFailures: map[string]int{},
		Filtered:      map[FilterReason]int{},
		Kept:          map[string]int{},
	}
}

// Processed counts records read from all inputs.
func (r *Report) Processed() int { return r.Read }

// Dropped counts records removed by filters.
func (r *Report) Dropped() int { return sumValues(r.Filtered) }

// Failed counts per-record parse failures.
func (r *Report) Failed() int { return sumValues(r.ParseFailures) }

// Sources lists the provenance tags seen, sorted.
func (r *Report) Sources() []string {
	out := make([]string, 0, len(r.Parsed))
	for s := range r.Parsed {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Level returns the report for level, if written.
func (r *Report) Level(level int) (LevelReport, bool) {
	for _, l := range r.Levels {
		if l.Level == level {
			return l, true
		}
	}
	return LevelReport{}, false
}

func sumValues[K comparable](m map[K]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

//Personal.AI order the ending
