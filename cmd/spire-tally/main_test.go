// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spire-tally/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// workspace holds a deck directory and a config that keeps the ID log inside
// the test's temp dir.
type workspace struct {
	dir    string
	config string
	idLog  string
}

func newWorkspace(t *testing.T, backend types.IDStoreBackend) workspace {
	t.Helper()
	dir := t.TempDir()
	w := workspace{
		dir:    dir,
		config: filepath.Join(dir, "spire-tally.yaml"),
		idLog:  filepath.Join(dir, "state", "ids"),
	}
	cfg := fmt.Sprintf(`id_store:
  backend: %s
  path: %s
report:
  qr_code: false
  compress: false
`, backend, w.idLog)
	require.NoError(t, os.WriteFile(w.config, []byte(cfg), 0o644))
	return w
}

func (w workspace) deck(t *testing.T, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(w.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func (w workspace) reports(t *testing.T, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(w.dir, pattern))
	require.NoError(t, err)
	return matches
}

// resetFlags restores every flag to its default; cobra commands are
// package globals and keep parsed values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootWritesSummaryReport(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	deck := w.deck(t, "deck.txt", "Strike:1", "Strike:1", "Bash:2", "Zap:9")

	out, err := execute(t, "", "--config", w.config, deck)
	require.NoError(t, err)
	assert.Contains(t, out, "Report written:")

	reports := w.reports(t, "SpireDeck_*.pdf")
	require.Len(t, reports, 1)
	assert.NotContains(t, reports[0], "(VOID)")

	data, err := os.ReadFile(w.idLog)
	require.NoError(t, err)
	id := strings.TrimSpace(string(data))
	assert.Len(t, id, types.DeckIDDigits)
	assert.Equal(t, filepath.Join(w.dir, "SpireDeck_"+id+".pdf"), reports[0])
}

func TestRootPromptsForPath(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	deck := w.deck(t, "deck.txt", "Defend:1")

	out, err := execute(t, "  "+deck+"  \n", "--config", w.config)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, pathPrompt))
	assert.Len(t, w.reports(t, "SpireDeck_*.pdf"), 1)
}

func TestRootEmptyPromptWritesVoidReport(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	t.Chdir(w.dir)

	out, err := execute(t, "", "--config", w.config)
	require.NoError(t, err)
	assert.Contains(t, out, "Void report written:")
	assert.Len(t, w.reports(t, "SpireDeck_*(VOID).pdf"), 1)
}

func TestRootVoidReport(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	lines := make([]string, 11)
	for i := range lines {
		lines[i] = fmt.Sprintf("Strike:%d", 10+i)
	}
	deck := w.deck(t, "bad.txt", lines...)

	out, err := execute(t, "", "--config", w.config, deck)
	require.NoError(t, err, "a void report is still a successful run")
	assert.Contains(t, out, "Void report written:")
	assert.Len(t, w.reports(t, "SpireDeck_*(VOID).pdf"), 1)
}

func TestRootMissingInputWritesVoidReport(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)

	out, err := execute(t, "", "--config", w.config, filepath.Join(w.dir, "absent.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Len(t, w.reports(t, "SpireDeck_*(VOID).pdf"), 1)
}

func TestRootBadConfig(t *testing.T) {
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "deck.txt")
	require.Error(t, err)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		wantErr bool
		want    []string
	}{
		{
			name:  "valid deck",
			lines: []string{"Strike:1", "Bash:2", "Strike:1", "oops"},
			want:  []string{"Strike", "Total: 4 energy", "Invalid lines (1):", "  oops", "Verdict: ok"},
		},
		{
			name:    "too many invalid",
			lines:   strings.Split(strings.Repeat("bad\n", 11), "\n")[:11],
			wantErr: true,
			want:    []string{"Verdict: void (too-many-invalid)"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newWorkspace(t, types.IDStoreFile)
			deck := w.deck(t, "deck.txt", tc.lines...)

			out, err := execute(t, "", "--config", w.config, "check", deck)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			for _, s := range tc.want {
				assert.Contains(t, out, s)
			}

			assert.Empty(t, w.reports(t, "*.pdf"), "check must not write reports")
			assert.NoFileExists(t, w.idLog, "check must not issue ids")
		})
	}
}

func TestCheckJSON(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	deck := w.deck(t, "deck.txt", "Strike:1", "Bash:2", "Bash:x")

	out, err := execute(t, "", "--config", w.config, "check", "--json", deck)
	require.NoError(t, err)

	var got checkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.OK)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 1, got.Dropped)
	assert.Equal(t, []types.DeckEntry{{Name: "Bash", Cost: 2}, {Name: "Strike", Cost: 1}}, got.Cards)
	assert.Empty(t, got.Invalid)
}

func TestIDs(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	deck := w.deck(t, "deck.txt", "Strike:1")

	out, err := execute(t, "", "--config", w.config, "ids")
	require.NoError(t, err)
	assert.Contains(t, out, "No deck IDs issued yet.")

	for range 2 {
		_, err := execute(t, "", "--config", w.config, deck)
		require.NoError(t, err)
	}

	out, err = execute(t, "", "--config", w.config, "ids")
	require.NoError(t, err)
	assert.Contains(t, out, "2 ids")

	out, err = execute(t, "", "--config", w.config, "ids", "--json")
	require.NoError(t, err)
	var listing idListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, 2, listing.Count)
	assert.Len(t, listing.IDs, 2)
	assert.NotEqual(t, listing.IDs[0], listing.IDs[1])

	out, err = execute(t, "", "--config", w.config, "ids", "--yaml")
	require.NoError(t, err)
	var fromYAML idListing
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, listing, fromYAML)
}

func TestIDsRunNeedsSQLite(t *testing.T) {
	w := newWorkspace(t, types.IDStoreFile)
	_, err := execute(t, "", "--config", w.config, "ids", "--run", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--run requires the sqlite")
}

func TestIDsSQLiteByRun(t *testing.T) {
	w := newWorkspace(t, types.IDStoreSQLite)
	deck := w.deck(t, "deck.txt", "Strike:1")

	_, err := execute(t, "", "--config", w.config, deck)
	require.NoError(t, err)
	firstRun := runID

	_, err = execute(t, "", "--config", w.config, deck)
	require.NoError(t, err)

	out, err := execute(t, "", "--config", w.config, "ids", "--json", "--run", firstRun)
	require.NoError(t, err)
	var listing idListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, 1, listing.Count)

	out, err = execute(t, "", "--config", w.config, "ids", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, 2, listing.Count)
}

func TestVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "spire-tally dev\n", out)
}
