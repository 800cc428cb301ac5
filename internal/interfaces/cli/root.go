// Package cli implements the rbt command line: preprocessing, evaluation and
// the curation tools around them.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/config"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("rbt %s (commit: %s, built: %s)", b.Version, b.Commit, b.BuildDate)
}

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// Flag annotations binding a command flag to a configuration key.  Changed
// flags are passed to config.Load as overrides.
const (
	annotationConfigKey = "rbt_config_key"
	// annotationNegate marks a boolean flag that sets its key to false.
	annotationNegate = "rbt_config_negate"
)

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	LogFormat    string
	OutputFormat string
	Verbose      bool
	WatchConfig  bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config *config.Config
	// ConfigFile is the file the config came from; empty for defaults.
	ConfigFile   string
	Logger       logging.Logger
	RunID        string
	OutputFormat string
	Verbose      bool

	// level is set when the logger supports reloading its level.
	level  *zap.AtomicLevel
	cancel context.CancelFunc
}

// NewRootCommand creates the root cobra command with all global flags.
// Subcommands are added by RegisterCommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rbt",
		Short: "Reaction biocatalysis toolkit",
		Long: "rbt prepares enzymatic reaction data for sequence-to-sequence models and\n" +
			"scores the predictions those models make.",
		Version:       BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./rbt.yaml, ~/.rbt/config.yaml, /etc/rbt/config.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", logging.LevelInfo, "log level (debug, info, warn, error)")
	pf.StringVar(&opts.LogFormat, "log-format", "console", "log format (console, json)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.WatchConfig, "watch-config", false, "reload the log level when the config file changes")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "abort the command after this duration (0 disables)")
	bindFlag(pf, "log-level", "log.level")
	bindFlag(pf, "log-format", "log.format")

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		return persistentPreRun(c, opts)
	}
	cmd.PersistentPostRun = func(c *cobra.Command, args []string) {
		if cliCtx, err := GetCLIContext(c); err == nil && cliCtx.cancel != nil {
			cliCtx.cancel()
		}
	}
	return cmd
}

// RegisterCommands adds every subcommand to rootCmd.  deps supplies the
// optional infrastructure; zero fields use the defaults.
func RegisterCommands(rootCmd *cobra.Command, deps Dependencies) {
	deps = deps.withDefaults()
	rootCmd.AddCommand(
		NewPreprocessCmd(deps),
		NewEvaluateCmd(deps),
		NewCanonicalizeCmd(deps),
		NewExtractCmd(deps),
		NewRandomizeECCmd(deps),
		NewVersionCmd(),
	)
}

// bindFlag annotates a flag with the configuration key it overrides.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, annotationConfigKey, []string{key})
}

// bindNegatedFlag annotates a boolean flag that clears key when set.
func bindNegatedFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, annotationConfigKey, []string{key})
	_ = fs.SetAnnotation(name, annotationNegate, []string{"true"})
}

// persistentPreRun loads config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	overrides, err := flagOverrides(cmd)
	if err != nil {
		return err
	}
	if opts.Verbose {
		overrides["log.level"] = logging.LevelDebug
	}

	loadOpts := []config.LoadOption{config.WithOverrides(overrides)}
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithConfigPath(opts.ConfigPath))
	}
	loaded, err := config.Load(loadOpts...)
	if err != nil {
		return err
	}

	logger, level, err := initLogger(cmd, loaded.Config)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		Config:       loaded.Config,
		ConfigFile:   loaded.File,
		Logger:       logger,
		RunID:        uuid.NewString(),
		OutputFormat: opts.OutputFormat,
		Verbose:      opts.Verbose,
		level:        level,
	}
	if loaded.File != "" {
		logger.Debug("config loaded", logging.String("file", loaded.File))
	}
	if opts.WatchConfig {
		watchLogLevel(cliCtx)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		ctx, cliCtx.cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// flagOverrides collects changed flags that carry a configuration key.
func flagOverrides(cmd *cobra.Command) (map[string]interface{}, error) {
	overrides := map[string]interface{}{}
	var firstErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		keys := f.Annotations[annotationConfigKey]
		if len(keys) == 0 || firstErr != nil {
			return
		}
		value, err := flagValue(cmd.Flags(), f)
		if err != nil {
			firstErr = errors.InvalidParam(fmt.Sprintf("flag --%s: %v", f.Name, err))
			return
		}
		if len(f.Annotations[annotationNegate]) > 0 {
			if b, ok := value.(bool); ok {
				value = !b
			}
		}
		overrides[keys[0]] = value
	})
	return overrides, firstErr
}

func flagValue(fs *pflag.FlagSet, f *pflag.Flag) (interface{}, error) {
	switch f.Value.Type() {
	case "bool":
		return fs.GetBool(f.Name)
	case "int":
		return fs.GetInt(f.Name)
	case "int64":
		return fs.GetInt64(f.Name)
	case "float64":
		return fs.GetFloat64(f.Name)
	case "intSlice":
		return fs.GetIntSlice(f.Name)
	case "stringSlice":
		return fs.GetStringSlice(f.Name)
	case "duration":
		return fs.GetDuration(f.Name)
	default:
		return f.Value.String(), nil
	}
}

// initLogger creates a logger for CLI usage.  Entries go to the command's
// stderr unless the config names other outputs.
func initLogger(cmd *cobra.Command, cfg *config.Config) (logging.Logger, *zap.AtomicLevel, error) {
	if toStderrOnly(cfg.Log.OutputPaths) {
		logger, level := logging.NewDynamicWriterLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
		return logger, &level, nil
	}
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, errors.InvalidConfig("cannot open log output").WithCause(err)
	}
	return logger, nil, nil
}

func toStderrOnly(paths []string) bool {
	for _, p := range paths {
		if p != "stderr" {
			return false
		}
	}
	return true
}

// watchLogLevel follows edits of the config file for the rest of the run.
// Only the log level is reloaded; run options are fixed once a run starts.
func watchLogLevel(c *CLIContext) {
	if c.ConfigFile == "" || c.level == nil {
		c.Logger.Warn("--watch-config needs a config file and a stderr logger")
		return
	}
	err := config.Watch(c.ConfigFile, func(cfg *config.Config) {
		c.level.SetLevel(logging.ParseLevel(cfg.Log.Level))
		c.Logger.Info("log level reloaded", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		c.Logger.Warn("ignoring invalid config edit", logging.Err(err))
	})
	if err != nil {
		c.Logger.Warn("config watch not started", logging.Err(err))
	}
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute builds the command tree and runs it with ctx.  The returned error
// has already been printed; callers map it to an exit status.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	RegisterCommands(rootCmd, Dependencies{})
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

//Personal.AI order the ending
