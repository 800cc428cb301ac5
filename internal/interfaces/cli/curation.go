package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/curation"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// DefaultRandomizeSeed keeps randomize-ec reproducible unless --seed is set.
const DefaultRandomizeSeed = 42

// CurationSummary is the printed result of the curation tools.
type CurationSummary struct {
	RunID    string        `json:"run_id"`
	Tool     string        `json:"tool"`
	Lines    int           `json:"lines"`
	Written  int           `json:"written"`
	Skipped  int           `json:"skipped"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

func (s *CurationSummary) String() string {
	return fmt.Sprintf("%s: %d lines read, %d written, %d skipped -> %s", s.Tool, s.Lines, s.Written, s.Skipped, s.Output)
}

func (s *CurationSummary) TableHeaders() []string {
	return []string{"tool", "lines", "written", "skipped", "output"}
}

func (s *CurationSummary) TableRows() [][]string {
	return [][]string{{s.Tool, strconv.Itoa(s.Lines), strconv.Itoa(s.Written), strconv.Itoa(s.Skipped), s.Output}}
}

// runCuration wires a session and a curation service around one tool run.
func runCuration(cmd *cobra.Command, deps Dependencies, tool string, run func(curation.Service) (*curation.Report, error)) (err error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	sess, err := newSession(cliCtx, deps, tool)
	if err != nil {
		return err
	}
	defer func() { sess.finish(err) }()

	normalizer, err := sess.normalizer(cliCtx.Config.Normalizer.Isomeric)
	if err != nil {
		return err
	}
	report, err := run(curation.NewService(reaction.NewParser(normalizer), sess.logger))
	if err != nil {
		return err
	}
	return PrintResult(cmd, &CurationSummary{
		RunID:    cliCtx.RunID,
		Tool:     tool,
		Lines:    report.Lines,
		Written:  report.Written,
		Skipped:  report.Skipped,
		Output:   report.Output,
		Duration: report.Duration,
	})
}

// NewCanonicalizeCmd builds `rbt canonicalize INPUT OUTPUT`.
func NewCanonicalizeCmd(deps Dependencies) *cobra.Command {
	var pipe bool

	cmd := &cobra.Command{
		Use:   "canonicalize INPUT OUTPUT",
		Short: "Canonicalize tokenized backward predictions",
		Long: "Rewrites every line of INPUT with canonical, sorted reactants and re-tokenizes it.\n" +
			"Enzyme tokens are kept.  Unparseable lines are copied unchanged so OUTPUT stays\n" +
			"aligned with the n-best INPUT.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCuration(cmd, deps, "canonicalize", func(svc curation.Service) (*curation.Report, error) {
				return svc.Canonicalize(cmd.Context(), curation.CanonicalizeOptions{Input: args[0], Output: args[1], Pipe: pipe})
			})
		},
	}
	cmd.Flags().BoolVar(&pipe, "pipe", false, "write the pipe token before the enzyme tokens")
	cmd.Flags().Bool("no-isomeric-smiles", false, "drop stereochemistry when canonicalizing")
	bindNegatedFlag(cmd.Flags(), "no-isomeric-smiles", "normalizer.isomeric")
	return cmd
}

// NewExtractCmd builds `rbt extract INPUT... OUTPUT`.
func NewExtractCmd(deps Dependencies) *cobra.Command {
	var (
		levels []int
		data   string
	)

	cmd := &cobra.Command{
		Use:   "extract INPUT... OUTPUT",
		Short: "List molecules with their enzyme classes",
		Long: "Writes one smiles,ec_at_level,ec row per product (or reactant) and requested\n" +
			"level of every parseable reaction in the inputs.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCuration(cmd, deps, "extract", func(svc curation.Service) (*curation.Report, error) {
				return svc.Extract(cmd.Context(), curation.ExtractOptions{
					Inputs: args[:len(args)-1],
					Output: args[len(args)-1],
					Levels: levels,
					Side:   curation.Side(data),
				})
			})
		},
	}
	cmd.Flags().IntSliceVar(&levels, "level", []int{3}, "EC levels to write (repeatable)")
	cmd.Flags().StringVar(&data, "data", string(curation.SideProducts), "molecules to list: products or reactants")
	cmd.Flags().Bool("no-isomeric-smiles", false, "drop stereochemistry when canonicalizing")
	bindNegatedFlag(cmd.Flags(), "no-isomeric-smiles", "normalizer.isomeric")
	return cmd
}

// NewRandomizeECCmd builds `rbt randomize-ec INPUT OUTPUT`.
func NewRandomizeECCmd(deps Dependencies) *cobra.Command {
	var (
		pipe        bool
		withinClass bool
		shuffleOnly bool
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "randomize-ec INPUT OUTPUT",
		Short: "Scramble the enzyme codes of tokenized source lines",
		Long: "Gives every line of INPUT the enzyme tokens of another line, keeping its\n" +
			"reactants.  The output is a control data set for enzyme-conditioned models.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if withinClass && shuffleOnly {
				return errors.InvalidParam("--within-class and --shuffle-only are mutually exclusive")
			}
			mode := curation.RandomizeSwap
			switch {
			case withinClass:
				mode = curation.RandomizeWithinClass
			case shuffleOnly:
				mode = curation.RandomizeShuffle
			}
			return runCuration(cmd, deps, "randomize-ec", func(svc curation.Service) (*curation.Report, error) {
				return svc.RandomizeEC(cmd.Context(), curation.RandomizeOptions{
					Input:  args[0],
					Output: args[1],
					Pipe:   pipe,
					Mode:   mode,
					Seed:   seed,
				})
			})
		},
	}
	cmd.Flags().BoolVar(&pipe, "pipe", false, "write the pipe token before the enzyme tokens")
	cmd.Flags().BoolVar(&withinClass, "within-class", false, "draw codes from lines of the same top-level class")
	cmd.Flags().BoolVar(&shuffleOnly, "shuffle-only", false, "permute the existing codes across lines")
	cmd.Flags().Int64Var(&seed, "seed", DefaultRandomizeSeed, "random seed")
	return cmd
}

//Personal.AI order the ending
