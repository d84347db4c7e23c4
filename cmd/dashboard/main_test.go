package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"DASHBOARD_ADDR", "DASHBOARD_DATASET", "DASHBOARD_LOG_LEVEL", "DASHBOARD_SESSION_TTL"} {
		t.Setenv(k, "")
	}
	t.Setenv("DASHBOARD_LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestSummaryLocal tests the terminal summary against the embedded dataset
func TestSummaryLocal(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "defaults",
			args:     []string{"summary"},
			contains: []string{"Penguins Characteristics Explorer", "Total Penguins In Dataset", "20", "10 more rows"},
		},
		{
			name:     "filtered",
			args:     []string{"summary", "--species", "Gentoo", "--max-mass", "5000", "--rows", "2"},
			contains: []string{"47.1 mm", "13.6 mm", "1 more rows"},
		},
		{
			name:     "nothing selected",
			args:     []string{"summary", "--max-mass", "3000"},
			contains: []string{"N/A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

// TestSummaryRemote tests the terminal summary through a running server
func TestSummaryRemote(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	out, err := runCLI(t, "summary", "--server", ts.URL, "--species", "Chinstrap", "--rows", "0")
	require.NoError(t, err)

	assert.Contains(t, out, "Total Penguins In Dataset")
	assert.Contains(t, out, "Dream")
	assert.NotContains(t, out, "Biscoe")
	assert.Equal(t, 0, srv.registry.Len(), "the temporary session is closed")
}

// TestCommandErrors tests startup failures
func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()
	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("controls:\n  mass_min: 9000\n"), 0644))

	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{"invalid config", []string{"summary", "--config", badConfig}, "mass_min"},
		{"missing dataset", []string{"summary", "--dataset", filepath.Join(dir, "none.csv")}, "load dataset"},
		{"serve with missing dataset", []string{"serve", "--dataset", filepath.Join(dir, "none.csv")}, "load dataset"},
		{"unsupported source", []string{"summary", "--dataset", "ftp://host/penguins.csv"}, "unsupported"},
		{"unreachable server", []string{"summary", "--server", "http://127.0.0.1:1"}, "open session"},
		{"stray argument", []string{"summary", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.errMsg), "error %q lacks %q", err, tt.errMsg)
		})
	}
}
