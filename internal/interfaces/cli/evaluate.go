package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/evaluation"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/messaging/kafka"
)

// EvaluateSummary is the printed result of the evaluate command.
type EvaluateSummary struct {
	RunID       string                   `json:"run_id"`
	Dir         string                   `json:"dir"`
	Name        string                   `json:"name,omitempty"`
	Records     int                      `json:"records"`
	Skipped     int                      `json:"skipped"`
	Directions  []string                 `json:"directions"`
	Rows        []evaluation.AccuracyRow `json:"rows"`
	Files       []string                 `json:"files"`
	Duration    time.Duration            `json:"duration"`
	PublishedTo string                   `json:"published_to,omitempty"`
}

func (s *EvaluateSummary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d records scored", s.Records)
	if s.Skipped > 0 {
		fmt.Fprintf(&sb, ", %d skipped", s.Skipped)
	}
	sb.WriteString("\n")
	for _, r := range s.Rows {
		if r.EC != evaluation.AllClasses {
			continue
		}
		fmt.Fprintf(&sb, "%-10s top-%-3d %.4f (%d/%d)\n", r.Type, r.Top, r.Value, r.Correct, r.Total)
	}
	fmt.Fprintf(&sb, "%d files written to %s", len(s.Files), s.Dir)
	if s.PublishedTo != "" {
		sb.WriteString("\npublished to " + s.PublishedTo)
	}
	return sb.String()
}

func (s *EvaluateSummary) TableHeaders() []string {
	return evaluation.TableHeader
}

func (s *EvaluateSummary) TableRows() [][]string {
	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{r.Metric, string(r.Type), strconv.Itoa(r.Top), r.EC, strconv.FormatFloat(r.Value, 'f', 4, 64)})
	}
	return rows
}

// NewEvaluateCmd builds `rbt evaluate DIR`.
func NewEvaluateCmd(deps Dependencies) *cobra.Command {
	var publish bool

	cmd := &cobra.Command{
		Use:   "evaluate DIR",
		Short: "Score forward, backward and round-trip predictions",
		Long: "Reads src-test.txt, tgt-test.txt and the prediction files in DIR and reports\n" +
			"top-N accuracy overall and per enzyme class.  Listings of correct and incorrect\n" +
			"predictions and the optional CSV table are written to DIR.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			sess, err := newSession(cliCtx, deps, "evaluate")
			if err != nil {
				return err
			}
			defer func() { sess.finish(err) }()

			opts := evaluationOptions(cliCtx.Config)
			opts.Dir = args[0]

			ctx := cmd.Context()
			svc := evaluation.NewService(sess.normalizer, sess.metrics, sess.logger)
			res, err := svc.Evaluate(ctx, opts)
			if err != nil {
				return err
			}

			summary := newEvaluateSummary(cliCtx.RunID, opts, res)
			if summary.PublishedTo, err = sess.publish(ctx, publish, opts.Dir); err != nil {
				return err
			}
			sess.emit(func(ev kafka.RunEvents) error {
				return ev.EvaluateCompleted(ctx, cliCtx.RunID, evaluatePayload(summary))
			})
			return PrintResult(cmd, summary)
		},
	}

	f := cmd.Flags()
	f.Int("n-best-fw", 0, "candidates per record in the forward predictions")
	f.Int("n-best-bw", 0, "candidates per record in the backward predictions")
	f.Int("n-best-rtr", 0, "forward candidates per backward candidate in the round-trip predictions")
	f.IntSlice("top-n-fw", nil, "forward top-N cutoffs (repeatable)")
	f.IntSlice("top-n-bw", nil, "backward top-N cutoffs (repeatable)")
	f.IntSlice("top-n-rtr", nil, "round-trip top-N cutoffs (repeatable)")
	f.Bool("top-n-range", false, "score every cutoff from 1 to the largest requested")
	f.String("name", "", "also write the table to DIR/<name>.csv")
	f.String("layout", "", "prediction file layout: stacked or delimited")
	f.String("delimiter", "", "candidate separator of the delimited layout")
	f.Int("ec-pred-level", 0, "EC depth compared by the enzyme-code metric")
	f.Int("group-by-level", 0, "EC depth of the per-class rows")
	f.Bool("isomeric-smiles", true, "compare structures with stereochemistry")
	f.Bool("no-isomeric-smiles", false, "compare structures without stereochemistry")
	f.Bool("no-listings", false, "do not write correct_* and incorrect_* files")
	f.Int("workers", 0, "parallel scoring workers (0 uses every CPU)")
	f.BoolVar(&publish, "publish", false, "upload DIR to the configured object store")

	bindFlag(f, "n-best-fw", "evaluate.n_best_fw")
	bindFlag(f, "n-best-bw", "evaluate.n_best_bw")
	bindFlag(f, "n-best-rtr", "evaluate.n_best_rtr")
	bindFlag(f, "top-n-fw", "evaluate.top_n_fw")
	bindFlag(f, "top-n-bw", "evaluate.top_n_bw")
	bindFlag(f, "top-n-rtr", "evaluate.top_n_rtr")
	bindFlag(f, "top-n-range", "evaluate.top_n_range")
	bindFlag(f, "name", "evaluate.name")
	bindFlag(f, "layout", "evaluate.layout")
	bindFlag(f, "delimiter", "evaluate.delimiter")
	bindFlag(f, "ec-pred-level", "evaluate.ec_pred_level")
	bindFlag(f, "group-by-level", "evaluate.group_by_level")
	bindFlag(f, "isomeric-smiles", "normalizer.isomeric")
	bindNegatedFlag(f, "no-isomeric-smiles", "normalizer.isomeric")
	bindNegatedFlag(f, "no-listings", "evaluate.listings")
	bindFlag(f, "workers", "normalizer.workers")

	return cmd
}

func newEvaluateSummary(runID string, opts evaluation.Options, res *evaluation.Result) *EvaluateSummary {
	dirs := make([]string, 0, len(res.Directions))
	for _, d := range res.Directions {
		dirs = append(dirs, string(d))
	}
	return &EvaluateSummary{
		RunID:      runID,
		Dir:        opts.Dir,
		Name:       opts.Name,
		Records:    res.Records,
		Skipped:    res.Skipped,
		Directions: dirs,
		Rows:       res.Rows,
		Files:      res.Files,
		Duration:   res.Duration,
	}
}

func evaluatePayload(s *EvaluateSummary) kafka.EvaluateCompletedPayload {
	points := make([]kafka.AccuracyPoint, 0, len(s.Rows))
	for _, r := range s.Rows {
		points = append(points, kafka.AccuracyPoint{Type: string(r.Type), Top: r.Top, EC: r.EC, Value: r.Value})
	}
	return kafka.EvaluateCompletedPayload{
		Dir:         s.Dir,
		Name:        s.Name,
		Records:     s.Records,
		Skipped:     s.Skipped,
		Directions:  s.Directions,
		Accuracy:    points,
		DurationMs:  s.Duration.Milliseconds(),
		PublishedTo: s.PublishedTo,
	}
}

//Personal.AI order the ending
