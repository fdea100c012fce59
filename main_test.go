package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ansel1/tangview/parser"
	"github.com/ansel1/tangview/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir string, report *results.Report) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, parser.EncodeJSONP(&b, "", report))
	path := filepath.Join(dir, "result.js")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func passing() *results.Report {
	return &results.Report{
		NumTotalTests:  1,
		NumPassedTests: 1,
		Success:        true,
		TestResults: []results.TestFileResult{{
			TestFilePath:    "src/ok.test.js",
			NumPassingTests: 1,
			PerfStats:       results.PerfStats{Start: 0, End: 250},
			TestResults:     []results.TestCaseResult{{Title: "works", Status: results.StatusPassed}},
		}},
	}
}

func failing() *results.Report {
	r := passing()
	r.Success = false
	r.NumFailedTests = 1
	r.TestResults[0].NumFailingTests = 1
	r.TestResults[0].TestResults = append(r.TestResults[0].TestResults,
		results.TestCaseResult{Title: "breaks", Status: results.StatusFailed, FailureMessages: []string{"expected 1"}})
	return r
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), append([]string{"tangview"}, args...), &stdout, &stderr, false)
	return code, stdout.String(), stderr.String()
}

func TestSummaryCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeScript(t, t.TempDir(), passing())

	code, stdout, stderr := runCLI(t, "summary", path)
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "OVERALL RESULTS")
	assert.Contains(t, stdout, "src/ok.test.js")
	assert.Contains(t, stdout, "Passed:         1 ✓ (100.00%)")
}

func TestSummaryCommandFailures(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeScript(t, t.TempDir(), failing())

	code, stdout, stderr := runCLI(t, "--precision", "0", "summary", path)
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "FAILURES")
	assert.Contains(t, stdout, "expected 1")
	assert.Contains(t, stdout, "Passed:         1 ✓ (50%)")
}

func TestViewWithoutTTYPrintsSummary(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeScript(t, t.TempDir(), passing())

	code, stdout, _ := runCLI(t, "view", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "OVERALL RESULTS")
}

func TestSummaryCommandOverHTTP(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = parser.EncodeJSONP(w, "customCb", passing())
	}))
	defer srv.Close()

	code, stdout, stderr := runCLI(t, "--callback", "customCb", "summary", srv.URL+"/result.js")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "src/ok.test.js")
}

func TestSummaryCommandUsesConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := writeScript(t, t.TempDir(), passing())
	cfg := "source: " + path + "\nprecision: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tangview.yaml"), []byte(cfg), 0o644))

	code, stdout, stderr := runCLI(t, "summary")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Passed:         1 ✓ (100%)")
}

func TestRecomputeTimingFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	report := passing()
	long := 12000.0
	report.TestResults[0].TestResults[0].Duration = &long
	path := writeScript(t, t.TempDir(), report)

	code, stdout, _ := runCLI(t, "--slow-threshold", "10000", "summary", path)
	assert.Equal(t, 0, code)
	assert.NotContains(t, stdout, "SLOW FILES")

	code, stdout, _ = runCLI(t, "--slow-threshold", "10000", "--recompute-timing", "summary", path)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "SLOW FILES")
	assert.Contains(t, stdout, "00:12.000")
}

func TestErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("precision: -3\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no source", args: []string{"summary"}, want: "Error: no report source"},
		{name: "missing file", args: []string{"summary", filepath.Join(dir, "missing.js")}, want: "jsonp fetch failed"},
		{name: "bad config", args: []string{"--config", badConfig, "summary", "x.js"}, want: "precision must be between 0 and 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}
