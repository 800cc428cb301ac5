package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/testutil"
	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

func TestNewRootCommand_Structure(t *testing.T) {
	root := NewRootCommand()
	RegisterCommands(root, Dependencies{})

	assert.Equal(t, "rbt", root.Use)
	assert.NotEmpty(t, root.Short)
	assert.True(t, root.SilenceUsage)

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"preprocess", "evaluate", "canonicalize", "extract", "randomize-ec", "version"}, names)
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"config", "log-level", "log-format", "output", "verbose", "watch-config", "timeout"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "text", root.PersistentFlags().Lookup("output").DefValue)
	assert.Equal(t, []string{"log.level"}, root.PersistentFlags().Lookup("log-level").Annotations[annotationConfigKey])
}

func TestFlagOverrides_OnlyChangedBoundFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	f := cmd.Flags()
	f.IntSlice("ec-level", nil, "")
	f.Int("max-products", 0, "")
	f.Float64("valid-ratio", 0, "")
	f.Bool("keep-precursors", false, "")
	f.String("salt", "", "")
	f.Bool("unbound", false, "")
	bindFlag(f, "ec-level", "preprocess.levels")
	bindFlag(f, "max-products", "preprocess.max_products")
	bindFlag(f, "valid-ratio", "preprocess.valid_ratio")
	bindNegatedFlag(f, "keep-precursors", "preprocess.remove_precursors")
	bindFlag(f, "salt", "preprocess.salt")

	require.NoError(t, f.Parse([]string{"--ec-level", "1,3", "--valid-ratio", "0", "--keep-precursors", "--unbound"}))
	overrides, err := flagOverrides(cmd)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"preprocess.levels":            []int{1, 3},
		"preprocess.valid_ratio":       0.0,
		"preprocess.remove_precursors": false,
	}, overrides)
}

func TestGetCLIContext_Missing(t *testing.T) {
	cmd := &cobra.Command{}
	_, err := GetCLIContext(cmd)
	assert.Error(t, err)

	cmd.SetContext(context.Background())
	_, err = GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestPersistentPreRun_ConfigPrecedence(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: warn\npreprocess:\n  max_products: 3\n")
	var seen *CLIContext
	root := NewRootCommand()
	root.AddCommand(&cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			seen, err = GetCLIContext(cmd)
			return err
		},
	})
	root.SetArgs([]string{"probe", "--config", cfgPath, "--verbose"})
	root.SetErr(&bytes.Buffer{})
	require.NoError(t, root.Execute())

	require.NotNil(t, seen)
	assert.Equal(t, cfgPath, seen.ConfigFile)
	assert.Equal(t, "debug", seen.Config.Log.Level)
	assert.Equal(t, 3, seen.Config.Preprocess.MaxProducts)
	assert.Len(t, seen.RunID, 36)
	assert.NotNil(t, seen.level)
}

func TestPersistentPreRun_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		status int
	}{
		{"missing file", []string{"version", "--config", "/nonexistent/rbt.yaml"}, 3},
		{"invalid value", []string{"version", "--config", writeConfig(t, "evaluate:\n  layout: sideways\n")}, 2},
		{"bad log level", []string{"version", "--config", writeConfig(t, ""), "--log-level", "loud"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, Dependencies{}, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, tt.status, errors.ExitStatusForError(res.err))
		})
	}
}

func TestWatchLogLevel_NeedsConfigFile(t *testing.T) {
	logger := testutil.NewMockLogger()
	watchLogLevel(&CLIContext{Logger: logger})
	assert.True(t, logger.HasMessage("warn", "--watch-config needs a config file and a stderr logger"))
}

func TestVersionCmd_JSON(t *testing.T) {
	Version, GitCommit = "1.2.3", "abc"
	t.Cleanup(func() { Version, GitCommit = "dev", "unknown" })

	res := runCLI(t, Dependencies{}, "version", "-o", "json", "--config", writeConfig(t, ""))
	require.NoError(t, res.err)
	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc", info.Commit)
}

func TestExecute_ReturnsArgumentErrors(t *testing.T) {
	err := Execute(context.Background(), []string{"evaluate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"type", "value"}, [][]string{{"forward", "1.0000"}, {"bw"}})
	assert.Equal(t, "type     value\n-------  ------\nforward  1.0000\nbw       \n", out)
	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintResult_Formats(t *testing.T) {
	summary := &CurationSummary{Tool: "extract", Lines: 2, Written: 4, Output: "out.csv"}
	tests := []struct {
		format string
		want   string
	}{
		{"text", "extract: 2 lines read, 4 written, 0 skipped -> out.csv\n"},
		{"table", "tool     lines  written  skipped  output\n-------  -----  -------  -------  -------\nextract  2      4        0        out.csv\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&buf)
			cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, &CLIContext{OutputFormat: tt.format}))
			require.NoError(t, PrintResult(cmd, summary))
			assert.Equal(t, tt.want, buf.String())
		})
	}

	cmd := &cobra.Command{}
	cmd.SetContext(context.WithValue(context.Background(), cliContextKey{}, &CLIContext{OutputFormat: "yaml"}))
	err := PrintResult(cmd, summary)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

//Personal.AI order the ending
