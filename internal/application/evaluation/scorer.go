package evaluation

import (
	"context"
	"slices"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
)

// Direction names a scored prediction task.
type Direction string

const (
	Forward   Direction = "forward"
	Backward  Direction = "backward"
	RoundTrip Direction = "round-trip"
	ECOnly    Direction = "ec-only"
)

// Directions in report order.
var Directions = []Direction{Forward, Backward, RoundTrip, ECOnly}

// Suffix is the short name used in listing file names.
func (d Direction) Suffix() string {
	switch d {
	case Forward:
		return "fw"
	case Backward:
		return "bw"
	case RoundTrip:
		return "rtrp"
	default:
		return "ec"
	}
}

// AllClasses labels the row aggregated over every enzyme class.
const AllClasses = "all"

const testSource = "test"

// AccuracyRow is one cell of the accuracy table.
type AccuracyRow struct {
	Metric  string
	Type    Direction
	Top     int
	EC      string
	Value   float64
	Correct int
	Total   int
}

// Listing holds the per-record verdicts of one direction at one cutoff.
type Listing struct {
	Direction Direction
	Top       int
	Correct   []string
	// Incorrect pairs the truth with the top-1 candidate.
	Incorrect [][2]string
}

// verdicts is the judgement of one direction for one record.
type verdicts struct {
	hits []bool
	top1 string
}

// firstHit is the 1-based rank of the first matching candidate, 0 for none.
func (v verdicts) firstHit() int {
	if i := slices.Index(v.hits, true); i >= 0 {
		return i + 1
	}
	return 0
}

func (v verdicts) correctAt(n int) bool {
	h := v.firstHit()
	return h > 0 && h <= n
}

// judgement is everything the scorer needs to know about one test record.
type judgement struct {
	truth  reaction.Record
	valid  bool
	byDir  map[Direction]verdicts
	truthE string
}

// scorer compares candidates to ground truth through canonical structures.
type scorer struct {
	parser *reaction.Parser
	opts   Options
}

// judge evaluates record i of ds.  An unparseable ground truth yields an
// invalid judgement that is left out of every denominator.
func (s *scorer) judge(ctx context.Context, ds *Dataset, i int) judgement {
	truth, err := s.parser.Parse(ctx, reaction.Detokenize(ds.Sources[i]+" >> "+ds.Targets[i]), testSource)
	if err != nil {
		return judgement{}
	}
	j := judgement{
		truth:  truth,
		valid:  true,
		byDir:  make(map[Direction]verdicts, len(Directions)),
		truthE: truth.EC().Class(s.opts.ECPredLevel),
	}

	j.byDir[Forward] = s.compare(ctx, ds.Forward[i], func(cand string) string {
		return ds.Sources[i] + " >> " + cand
	}, func(r reaction.Record) bool {
		return r.ProductKey() == truth.ProductKey()
	})

	j.byDir[Backward] = s.compare(ctx, ds.Backward[i], func(cand string) string {
		return cand + " >> " + ds.Targets[i]
	}, func(r reaction.Record) bool {
		return r.ReactantKey() == truth.ReactantKey() && r.EC().Equal(truth.EC())
	})

	if ds.HasRoundTrip() {
		j.byDir[RoundTrip] = s.compareRoundTrip(ctx, ds.Backward[i], ds.RoundTrip[i], truth.ProductKey())
	}

	j.byDir[ECOnly] = s.compareEC(ds.Backward[i], truth.EC())
	return j
}

// compare parses every candidate as a full reaction and applies match.  A
// candidate that does not parse never matches; its top-1 text is the
// detokenized candidate itself.
func (s *scorer) compare(ctx context.Context, cands []string, build func(string) string, match func(reaction.Record) bool) verdicts {
	v := verdicts{hits: make([]bool, len(cands))}
	for k, cand := range cands {
		plain := reaction.Detokenize(build(cand))
		rec, err := s.parser.Parse(ctx, plain, testSource)
		ok := err == nil && match(rec)
		v.hits[k] = ok
		if k == 0 {
			v.top1 = plain
			if err == nil {
				v.top1 = rec.String()
			}
		}
	}
	return v
}

// compareRoundTrip judges the forward outputs regenerated from each backward
// candidate.  Only the final product side is canonicalised, so a backward
// candidate that does not parse still lets its round-trip outputs match.
// Candidate b*NBestRTR+r came from backward candidate b.
func (s *scorer) compareRoundTrip(ctx context.Context, backward, cands []string, want string) verdicts {
	v := verdicts{hits: make([]bool, len(cands))}
	for k, cand := range cands {
		key, err := s.parser.SideKey(ctx, reaction.Detokenize(cand))
		v.hits[k] = err == nil && key == want
		if k == 0 {
			product := reaction.Detokenize(cand)
			if err == nil {
				product = key
			}
			back := ""
			if len(backward) > 0 {
				back = reaction.Detokenize(backward[0])
			}
			v.top1 = back + ">>" + product
		}
	}
	return v
}

// compareEC is a literal comparison of enzyme tokens truncated to the
// prediction level.  Candidate structures are not parsed.
func (s *scorer) compareEC(cands []string, truth reaction.EnzymeCode) verdicts {
	want := truth.Truncate(s.opts.ECPredLevel)
	v := verdicts{hits: make([]bool, len(cands))}
	for k, cand := range cands {
		_, ec, err := reaction.DetokenizeSource(cand)
		ok := err == nil && !ec.IsZero() && ec.Truncate(s.opts.ECPredLevel).Equal(want)
		v.hits[k] = ok
		if k == 0 {
			if err == nil {
				v.top1 = ec.Class(s.opts.ECPredLevel)
			} else {
				v.top1 = reaction.Detokenize(cand)
			}
		}
	}
	return v
}

// judgeAll evaluates every record in parallel; judgements keep input order.
func (s *scorer) judgeAll(ctx context.Context, ds *Dataset, workers int) ([]judgement, error) {
	const chunk = 64
	out := make([]judgement, ds.Len())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < ds.Len(); start += chunk {
		end := min(start+chunk, ds.Len())
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = s.judge(gctx, ds, i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// tally turns judgements into accuracy rows and listings for one direction.
// Rows are grouped by the truth enzyme class at groupLevel, classes sorted,
// followed by the aggregate row.
func tally(js []judgement, dir Direction, tops []int, groupLevel int) ([]AccuracyRow, []Listing) {
	scored := lo.Filter(js, func(j judgement, _ int) bool {
		_, ok := j.byDir[dir]
		return j.valid && ok
	})
	groups := lo.GroupBy(scored, func(j judgement) string { return classOf(j, groupLevel) })
	classes := lo.Keys(groups)
	slices.Sort(classes)

	var rows []AccuracyRow
	var listings []Listing
	for _, n := range lo.Uniq(tops) {
		for _, c := range classes {
			rows = append(rows, accuracy(groups[c], dir, n, c))
		}
		rows = append(rows, accuracy(scored, dir, n, AllClasses))

		l := Listing{Direction: dir, Top: n}
		for _, j := range scored {
			truth := truthText(j, dir)
			v := j.byDir[dir]
			if v.correctAt(n) {
				l.Correct = append(l.Correct, truth)
			} else {
				l.Incorrect = append(l.Incorrect, [2]string{truth, v.top1})
			}
		}
		listings = append(listings, l)
	}
	return rows, listings
}

func accuracy(js []judgement, dir Direction, n int, class string) AccuracyRow {
	correct := lo.CountBy(js, func(j judgement) bool { return j.byDir[dir].correctAt(n) })
	row := AccuracyRow{Metric: "acc", Type: dir, Top: n, EC: class, Correct: correct, Total: len(js)}
	if len(js) > 0 {
		row.Value = float64(correct) / float64(len(js))
	}
	return row
}

func classOf(j judgement, level int) string {
	if c := j.truth.EC().Class(level); c != "" {
		return c
	}
	return "-"
}

func truthText(j judgement, dir Direction) string {
	if dir == ECOnly {
		return j.truthE
	}
	return j.truth.String()
}

//Personal.AI order the ending
