package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/codefix-bench/internal/assets"
	"github.com/daryltucker/codefix-bench/internal/output"
)

func resetFlags() {
	cfgFile, verbose, logJSON = "", false, false
	urlOverride, modelsOverride, suiteOverride, suiteFileOverride, styleOverride = "", nil, "", "", ""
	outputDirOverride, outputFileOverride, formatOverride, cooldownOverride = "", "", "", 0
	listenOverride, showCode, forceExport, reviewJSON = "", false, false, false

	var reset func(*cobra.Command)
	reset = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	output.Discard()
	return buf.String(), err
}

func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var req struct {
				Model string `json:"model"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Model == "missing" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"model 'missing' not found"}`))
				return
			}
			w.Write([]byte(`{"message":{"role":"assistant","content":"fixed by ` + req.Model + `"},"done":true}`))
		case "/api/tags":
			w.Write([]byte(`{"models":[{"name":"m1"},{"name":"other:latest"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunWritesArtifact(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := fakeOllama(t)
	dir := filepath.Join(t.TempDir(), "results")

	out, err := execute(t, "run", "--url", srv.URL, "--models", "m1,missing", "--suite", "classic",
		"-o", dir, "--output-file", "bench.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Benchmark: 6 pairs")
	assert.Contains(t, out, "Results saved to "+filepath.Join(dir, "bench.csv"))

	f, err := os.Open(filepath.Join(dir, "bench.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, "m1", records[1][0])
	assert.Equal(t, "fixed by m1", records[1][5])
	assert.Equal(t, "missing", records[2][0])
	assert.Contains(t, records[2][5], "not found")
}

func TestRunInterruptedKeepsPreviousArtifact(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := fakeOllama(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous good results\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "run", "--url", srv.URL, "--models", "m1,m2", "--suite", "classic",
		"-o", dir, "--output-file", "bench.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "benchmark interrupted")
	assert.NotContains(t, out, "Results saved to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous good results\n", string(data))
}

func TestRunRejectsBadStyle(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "run", "--style", "poetic")
	assert.ErrorContains(t, err, "unknown style")
}

func TestListModels(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := fakeOllama(t)

	out, err := execute(t, "list-models", "--url", srv.URL, "--models", "m1,other,absent")
	require.NoError(t, err)
	assert.Contains(t, out, "- m1\n")
	assert.Contains(t, out, "Configured but not installed:\n- absent")
	assert.NotContains(t, out, "- other (ollama pull")
}

func TestSuiteListAndExport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	out, err := execute(t, "suite", "list", "--suite", "classic")
	require.NoError(t, err)
	assert.Contains(t, out, "Java_StringCompare.java")

	out, err = execute(t, "suite", "export")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote suites.yaml")

	data, err := os.ReadFile(filepath.Join(dir, assets.SuitesFileName))
	require.NoError(t, err)
	assert.Equal(t, assets.Suites, data)

	_, err = execute(t, "suite", "export")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "suite", "export", "--force")
	assert.NoError(t, err)

	out, err = execute(t, "suite", "list", "--suite-file", assets.SuitesFileName)
	require.NoError(t, err)
	assert.Contains(t, out, "PY_01")
}

func TestReviewFile(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := fakeOllama(t)
	require.NoError(t, os.WriteFile("bug.py", []byte("print(1/0)"), 0644))

	out, err := execute(t, "review", "bug.py", "--url", srv.URL, "--models", "m1,missing")
	require.NoError(t, err)
	assert.Contains(t, out, "=== m1 (")
	assert.Contains(t, out, "fixed by m1")
	assert.Contains(t, out, "=== missing\n")
}

func TestReviewRejectsEmptyInput(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := fakeOllama(t)
	require.NoError(t, os.WriteFile("empty.py", []byte("  \n\t\n"), 0644))

	_, err := execute(t, "review", "empty.py", "--url", srv.URL, "--models", "m1")
	assert.ErrorContains(t, err, "content is required")

	rootCmd.SetIn(strings.NewReader(""))
	defer rootCmd.SetIn(nil)
	_, err = execute(t, "review", "-", "--url", srv.URL, "--models", "m1")
	assert.ErrorContains(t, err, "content is required")
}
