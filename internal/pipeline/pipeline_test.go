// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/spire-tally/internal/deckid"
	"github.com/pdiddy/spire-tally/internal/report"
	"github.com/pdiddy/spire-tally/internal/tally"
	"github.com/pdiddy/spire-tally/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedIDs struct {
	id  types.DeckID
	err error
}

func (f fixedIDs) Next(context.Context) (types.DeckID, error) {
	return f.id, f.err
}

type recordingEmitter struct {
	summaries []report.Summary
	voids     []types.DeckID
	paths     []string
	err       error
}

func (r *recordingEmitter) Emit(path string, s report.Summary) error {
	r.paths = append(r.paths, path)
	r.summaries = append(r.summaries, s)
	return r.err
}

func (r *recordingEmitter) EmitVoid(path string, id types.DeckID) error {
	r.paths = append(r.paths, path)
	r.voids = append(r.voids, id)
	return r.err
}

func writeDeck(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestRunSummary(t *testing.T) {
	input := writeDeck(t, "Strike:1", "Defend:1", "Strike:1", "Bash:x", "Zap:9")
	em := &recordingEmitter{}
	var out bytes.Buffer

	o, err := Run(context.Background(), Options{
		InputPath: input,
		Policy:    tally.DefaultPolicy(),
		IDs:       fixedIDs{id: "000000042"},
		Reports:   em,
		Out:       &out,
	})
	require.NoError(t, err)

	assert.False(t, o.Void)
	assert.Equal(t, types.DeckID("000000042"), o.DeckID)
	assert.Equal(t, filepath.Join(filepath.Dir(input), "SpireDeck_000000042.pdf"), o.Path)
	assert.Empty(t, em.voids)
	require.Len(t, em.summaries, 1)

	want := report.Summary{
		DeckID:  "000000042",
		Total:   3,
		Deck:    types.Deck{"Strike": 2, "Defend": 1},
		Invalid: []types.InvalidLine{"Zap:9"},
	}
	if diff := cmp.Diff(want, em.summaries[0]); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, o.Result.Dropped)
	assert.Contains(t, out.String(), "Report written: "+o.Path)
}

func TestRunTooManyInvalidIsVoid(t *testing.T) {
	lines := make([]string, 11)
	for i := range lines {
		lines[i] = "no separator"
	}
	em := &recordingEmitter{}

	o, err := Run(context.Background(), Options{
		InputPath: writeDeck(t, lines...),
		Policy:    tally.DefaultPolicy(),
		IDs:       fixedIDs{id: "000000007"},
		Reports:   em,
	})
	require.NoError(t, err)

	assert.True(t, o.Void)
	assert.Equal(t, tally.AbortTooManyInvalid, o.Result.Reason)
	assert.True(t, strings.HasSuffix(o.Path, "SpireDeck_000000007(VOID).pdf"))
	assert.Equal(t, []types.DeckID{"000000007"}, em.voids)
	assert.Empty(t, em.summaries)
}

func TestRunUnreadableInputIsVoid(t *testing.T) {
	tests := []struct {
		name  string
		input func(t *testing.T) string
	}{
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.txt") }},
		{"directory", func(t *testing.T) string { return t.TempDir() }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := tc.input(t)
			em := &recordingEmitter{}
			var out bytes.Buffer

			o, err := Run(context.Background(), Options{
				InputPath: input,
				Policy:    tally.DefaultPolicy(),
				IDs:       fixedIDs{id: "000000001"},
				Reports:   em,
				Out:       &out,
			})
			require.NoError(t, err)
			assert.True(t, o.Void)
			assert.Equal(t, tally.AbortReadError, o.Result.Reason)
			assert.Equal(t, filepath.Dir(input), filepath.Dir(o.Path))
			assert.Len(t, em.voids, 1)
			assert.Contains(t, out.String(), "warning:")
		})
	}
}

func TestRunPersistWarningContinues(t *testing.T) {
	em := &recordingEmitter{}
	var out bytes.Buffer

	o, err := Run(context.Background(), Options{
		InputPath: writeDeck(t, "Strike:1"),
		Policy:    tally.DefaultPolicy(),
		IDs:       fixedIDs{id: "000000005", err: errors.Join(deckid.ErrNotPersisted, errors.New("disk full"))},
		Reports:   em,
		Out:       &out,
	})
	require.NoError(t, err)
	assert.Equal(t, types.DeckID("000000005"), o.DeckID)
	assert.Len(t, em.summaries, 1)
	assert.Contains(t, out.String(), "was not recorded")
}

func TestRunAllocationFailure(t *testing.T) {
	em := &recordingEmitter{}
	_, err := Run(context.Background(), Options{
		InputPath: writeDeck(t, "Strike:1"),
		Policy:    tally.DefaultPolicy(),
		IDs:       fixedIDs{err: deckid.ErrExhausted},
		Reports:   em,
	})
	require.ErrorIs(t, err, deckid.ErrExhausted)
	assert.Empty(t, em.paths)
}

func TestRunEmitFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		InputPath: writeDeck(t, "Strike:1"),
		Policy:    tally.DefaultPolicy(),
		IDs:       fixedIDs{id: "000000009"},
		Reports:   &recordingEmitter{err: errors.New("disk full")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "emitting report for deck 000000009")
}

// TestRunEndToEnd wires the real allocator, file store and renderer.
func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := deckid.NewFileStore(filepath.Join(t.TempDir(), "ids.txt"))
	alloc := deckid.NewAllocator(ctx, store)
	renderer := report.NewRenderer(types.ReportConfig{Compress: true, QRCode: true}, nil)

	good := writeDeck(t, "Strike:1", "Demon Form:3")
	o1, err := Run(ctx, Options{InputPath: good, Policy: tally.DefaultPolicy(), IDs: alloc, Reports: renderer})
	require.NoError(t, err)
	assert.FileExists(t, o1.Path)
	assert.False(t, o1.Void)

	bad := writeDeck(t, strings.Repeat("Strike:1\n", 1001))
	o2, err := Run(ctx, Options{InputPath: bad, Policy: tally.DefaultPolicy(), IDs: alloc, Reports: renderer})
	require.NoError(t, err)
	assert.FileExists(t, o2.Path)
	assert.True(t, o2.Void)
	assert.Equal(t, tally.AbortTooManyLines, o2.Result.Reason)

	assert.NotEqual(t, o1.DeckID, o2.DeckID)

	ids, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.DeckID{o1.DeckID, o2.DeckID}, ids)
}
