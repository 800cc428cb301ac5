package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/BioCatalysis-Toolkit/internal/config"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/BioCatalysis-Toolkit/internal/infrastructure/storage/minio"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the full command tree with args and captured output.
func runCLI(t *testing.T, deps Dependencies, args ...string) cliResult {
	t.Helper()
	root := NewRootCommand()
	RegisterCommands(root, deps)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

// writeConfig writes a YAML config into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rbt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeLines(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, path)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeEvents struct {
	mu         sync.Mutex
	preprocess []kafka.PreprocessCompletedPayload
	evaluate   []kafka.EvaluateCompletedPayload
	runIDs     []string
	closed     bool
	err        error
}

func (f *fakeEvents) PreprocessCompleted(_ context.Context, runID string, p kafka.PreprocessCompletedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preprocess = append(f.preprocess, p)
	f.runIDs = append(f.runIDs, runID)
	return f.err
}

func (f *fakeEvents) EvaluateCompleted(_ context.Context, runID string, p kafka.EvaluateCompletedPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evaluate = append(f.evaluate, p)
	f.runIDs = append(f.runIDs, runID)
	return f.err
}

func (f *fakeEvents) Close() error {
	f.closed = true
	return nil
}

func eventsDeps(ev *fakeEvents) Dependencies {
	return Dependencies{Events: func(*config.Config, logging.Logger) (kafka.RunEvents, error) { return ev, nil }}
}

type fakePublisher struct {
	requests []minio.PublishRequest
}

func (f *fakePublisher) Publish(_ context.Context, req minio.PublishRequest) (*minio.PublishResult, error) {
	f.requests = append(f.requests, req)
	return &minio.PublishResult{Bucket: "lab", Prefix: "runs/" + req.Command + "/" + req.RunID, Objects: []minio.UploadResult{{ObjectKey: "x"}}}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	closed  bool
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, key, canonical string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = canonical
	return nil
}

func (f *fakeCache) Close() error {
	f.closed = true
	return nil
}

//Personal.AI order the ending
