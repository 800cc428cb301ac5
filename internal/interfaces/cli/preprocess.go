package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/application/preprocess"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/domain/reaction"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
)

// PreprocessSummary is the printed result of the preprocess command.
type PreprocessSummary struct {
	RunID       string                   `json:"run_id"`
	OutputDir   string                   `json:"output_dir"`
	Inputs      []string                 `json:"inputs"`
	Read        int                      `json:"read"`
	Unique      int                      `json:"unique"`
	Dropped     int                      `json:"dropped"`
	Failed      int                      `json:"failed"`
	Kept        map[string]int           `json:"kept"`
	Levels      []preprocess.LevelReport `json:"levels"`
	Files       int                      `json:"files"`
	Duration    time.Duration            `json:"duration"`
	PublishedTo string                   `json:"published_to,omitempty"`
}

func (s *PreprocessSummary) String() string {
	out := fmt.Sprintf("read %d records, kept %d unique (%d dropped by filters, %d failed to parse)\n",
		s.Read, s.Unique, s.Dropped, s.Failed)
	for _, l := range s.Levels {
		out += fmt.Sprintf("level %d: train %d, valid %d, test %d\n",
			l.Level, l.Splits[preprocess.SplitTrain], l.Splits[preprocess.SplitValid], l.Splits[preprocess.SplitTest])
	}
	out += fmt.Sprintf("%d files written to %s", s.Files, s.OutputDir)
	if s.PublishedTo != "" {
		out += "\npublished to " + s.PublishedTo
	}
	return out
}

func (s *PreprocessSummary) TableHeaders() []string {
	return []string{"level", "expanded", "unique", "train", "valid", "test"}
}

func (s *PreprocessSummary) TableRows() [][]string {
	rows := make([][]string, 0, len(s.Levels))
	for _, l := range s.Levels {
		rows = append(rows, []string{
			strconv.Itoa(l.Level),
			strconv.Itoa(l.Expanded),
			strconv.Itoa(l.Unique),
			strconv.Itoa(l.Splits[preprocess.SplitTrain]),
			strconv.Itoa(l.Splits[preprocess.SplitValid]),
			strconv.Itoa(l.Splits[preprocess.SplitTest]),
		})
	}
	return rows
}

// NewPreprocessCmd builds `rbt preprocess INPUT... OUTPUT_DIR`.
func NewPreprocessCmd(deps Dependencies) *cobra.Command {
	var (
		excludePatterns  []string
		excludeMolecules []string
		publish          bool
	)

	cmd := &cobra.Command{
		Use:   "preprocess INPUT... OUTPUT_DIR",
		Short: "Build tokenized train/valid/test sets from reaction files",
		Long: "Reads reaction lines of the form reactants|ec>>products (or CSV files with an\n" +
			"rxn column), filters and deduplicates them, and writes one OpenNMT data tree per\n" +
			"requested EC level under OUTPUT_DIR/experiments.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			sess, err := newSession(cliCtx, deps, "preprocess")
			if err != nil {
				return err
			}
			defer func() { sess.finish(err) }()

			opts := preprocessOptions(cliCtx.Config)
			opts.Inputs = args[:len(args)-1]
			opts.OutputDir = args[len(args)-1]
			opts.Patterns = excludePatterns
			opts.Molecules = excludeMolecules

			normalizer, err := sess.normalizer(cliCtx.Config.Normalizer.Isomeric)
			if err != nil {
				return err
			}
			svc := preprocess.NewService(reaction.NewParser(normalizer), sess.metrics, sess.logger)

			ctx := cmd.Context()
			report, err := svc.Run(ctx, opts)
			if err != nil {
				return err
			}
			if report.InputErrors != nil {
				sess.logger.Warn("some inputs were skipped", logging.Err(report.InputErrors))
			}

			summary := newPreprocessSummary(cliCtx.RunID, opts.OutputDir, report)
			if summary.PublishedTo, err = sess.publish(ctx, publish, opts.OutputDir); err != nil {
				return err
			}
			sess.emit(func(ev kafka.RunEvents) error {
				return ev.PreprocessCompleted(ctx, cliCtx.RunID, preprocessPayload(summary))
			})
			return PrintResult(cmd, summary)
		},
	}

	f := cmd.Flags()
	f.String("remove-patterns", "", "file of SMARTS patterns; matching records are excluded")
	f.String("remove-molecules", "", "file of SMILES; records containing them are excluded")
	f.StringArrayVar(&excludePatterns, "exclude-pattern", nil, "additional SMARTS pattern to exclude (repeatable)")
	f.StringArrayVar(&excludeMolecules, "exclude-molecule", nil, "additional SMILES to exclude (repeatable)")
	f.String("exclusion-mode", "", "drop-record or strip-products")
	f.Bool("keep-precursors", false, "keep products that also appear as reactants")
	f.IntSlice("ec-level", nil, "EC levels to write, 1-4 (repeatable or comma separated)")
	f.Int("max-products", 0, "drop records with more products (0 disables)")
	f.Int("min-atom-count", 0, "minimum heavy atoms per kept molecule")
	f.String("atom-count-scope", "", "products or both")
	f.Bool("bi-directional", false, "also write every reaction reversed")
	f.Bool("split-products", false, "write one record per product")
	f.Float64("valid-ratio", 0, "share of reactions in the validation set")
	f.Float64("test-ratio", 0, "share of reactions in the test set")
	f.String("salt", "", "salt mixed into the split hash")
	f.Int("workers", 0, "parallel parse workers (0 uses every CPU)")
	f.Bool("no-isomeric-smiles", false, "drop stereochemistry when canonicalizing")
	f.BoolVar(&publish, "publish", false, "upload OUTPUT_DIR to the configured object store")

	bindFlag(f, "remove-patterns", "preprocess.pattern_file")
	bindFlag(f, "remove-molecules", "preprocess.molecule_file")
	bindFlag(f, "exclusion-mode", "preprocess.exclusion_mode")
	bindNegatedFlag(f, "keep-precursors", "preprocess.remove_precursors")
	bindFlag(f, "ec-level", "preprocess.levels")
	bindFlag(f, "max-products", "preprocess.max_products")
	bindFlag(f, "min-atom-count", "preprocess.min_atom_count")
	bindFlag(f, "atom-count-scope", "preprocess.atom_count_scope")
	bindFlag(f, "bi-directional", "preprocess.bidirectional")
	bindFlag(f, "split-products", "preprocess.split_products")
	bindFlag(f, "valid-ratio", "preprocess.valid_ratio")
	bindFlag(f, "test-ratio", "preprocess.test_ratio")
	bindFlag(f, "salt", "preprocess.salt")
	bindFlag(f, "workers", "normalizer.workers")
	bindNegatedFlag(f, "no-isomeric-smiles", "normalizer.isomeric")

	return cmd
}

func newPreprocessSummary(runID, outputDir string, r *preprocess.Report) *PreprocessSummary {
	return &PreprocessSummary{
		RunID:     runID,
		OutputDir: outputDir,
		Inputs:    r.Inputs,
		Read:      r.Processed(),
		Unique:    r.Unique,
		Dropped:   r.Dropped(),
		Failed:    r.Failed(),
		Kept:      r.Kept,
		Levels:    r.Levels,
		Files:     len(r.Files),
		Duration:  r.Duration,
	}
}

func preprocessPayload(s *PreprocessSummary) kafka.PreprocessCompletedPayload {
	levels := make([]int, 0, len(s.Levels))
	for _, l := range s.Levels {
		levels = append(levels, l.Level)
	}
	return kafka.PreprocessCompletedPayload{
		OutputDir:   s.OutputDir,
		Inputs:      s.Inputs,
		Read:        s.Read,
		Unique:      s.Unique,
		Dropped:     s.Dropped,
		Failed:      s.Failed,
		Kept:        s.Kept,
		Levels:      levels,
		Files:       s.Files,
		DurationMs:  s.Duration.Milliseconds(),
		PublishedTo: s.PublishedTo,
	}
}

//Personal.AI order the ending
