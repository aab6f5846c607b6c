// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one deck file through tally, ID allocation and
// report emission. Every run that returns a nil error has written exactly
// one report next to the input file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/spire-tally/internal/deckid"
	"github.com/pdiddy/spire-tally/internal/report"
	"github.com/pdiddy/spire-tally/internal/tally"
	"github.com/pdiddy/spire-tally/pkg/types"
)

// IDSource hands out deck IDs. *deckid.Allocator satisfies it.
type IDSource interface {
	Next(ctx context.Context) (types.DeckID, error)
}

// Emitter writes reports. *report.Renderer satisfies it.
type Emitter interface {
	Emit(path string, s report.Summary) error
	EmitVoid(path string, id types.DeckID) error
}

// Options configures a single run.
type Options struct {
	InputPath string
	Policy    tally.Policy
	IDs       IDSource
	Reports   Emitter

	// Log receives structured events; nil discards them.
	Log *zap.Logger
	// Out receives the user-facing progress lines; nil discards them.
	Out io.Writer
}

// Outcome describes the report a run produced.
type Outcome struct {
	DeckID types.DeckID
	Path   string
	Void   bool
	Result tally.Result
}

// Run tallies opts.InputPath and writes its report into the same directory.
// Unreadable input, too many lines and too many invalid lines all yield a
// void report rather than an error. A deck ID that could not be recorded is
// reported as a warning. Run fails only when no report could be written.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	dir := filepath.Dir(opts.InputPath)

	res, err := tallyInput(opts.InputPath, opts.Policy)
	switch {
	case err != nil:
		log.Warn("deck file unreadable",
			zap.String("path", opts.InputPath),
			zap.Error(err))
		fmt.Fprintf(out, "  warning: %v\n", err)
	case !res.OK:
		log.Warn("deck rejected",
			zap.String("path", opts.InputPath),
			zap.String("reason", string(res.Reason)),
			zap.Int("lines", res.Lines),
			zap.Int("invalid", len(res.Invalid)))
	default:
		log.Info("deck tallied",
			zap.String("path", opts.InputPath),
			zap.Int("cards", len(res.Deck)),
			zap.Int("total", res.Total()),
			zap.Int("invalid", len(res.Invalid)),
			zap.Int("dropped", res.Dropped))
	}

	id, err := opts.IDs.Next(ctx)
	if err != nil {
		if !errors.Is(err, deckid.ErrNotPersisted) {
			return Outcome{Result: res}, fmt.Errorf("allocating deck id: %w", err)
		}
		log.Warn("deck id not recorded",
			zap.String("deck_id", id.String()),
			zap.Error(err))
		fmt.Fprintf(out, "  warning: deck id %s was not recorded and may be reissued: %v\n", id, err)
	}

	o := Outcome{DeckID: id, Void: !res.OK, Result: res}
	o.Path = filepath.Join(dir, report.FileName(id, o.Void))

	if o.Void {
		err = opts.Reports.EmitVoid(o.Path, id)
	} else {
		err = opts.Reports.Emit(o.Path, report.Summary{
			DeckID:  id,
			Total:   res.Total(),
			Deck:    res.Deck,
			Invalid: res.Invalid,
		})
	}
	if err != nil {
		return o, fmt.Errorf("emitting report for deck %s: %w", id, err)
	}

	log.Info("report emitted",
		zap.String("deck_id", id.String()),
		zap.String("path", o.Path),
		zap.Bool("void", o.Void))
	if o.Void {
		fmt.Fprintf(out, "Void report written: %s\n", o.Path)
	} else {
		fmt.Fprintf(out, "Report written: %s (total %d energy)\n", o.Path, res.Total())
	}
	return o, nil
}

// tallyInput rejects anything that is not a regular file before parsing, so
// directories and devices degrade to a failed tally.
func tallyInput(path string, p tally.Policy) (tally.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return tally.Result{Deck: types.Deck{}, Reason: tally.AbortReadError}, fmt.Errorf("reading deck file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return tally.Result{Deck: types.Deck{}, Reason: tally.AbortReadError}, fmt.Errorf("reading deck file: %s is not a regular file", path)
	}
	return tally.ParseFile(path, p)
}
