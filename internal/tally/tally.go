// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tally validates deck text and aggregates per-card energy costs.
//
// Input is one "name:cost" pair per line. Valid lines accumulate into a
// types.Deck; rejected lines are kept verbatim. A run fails (and the caller
// should emit a void report) when the line limit or the invalid-line cap is
// exceeded, or when the input cannot be read.
package tally

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdiddy/spire-tally/pkg/types"
)

const (
	DefaultMaxLines   = 1000
	DefaultMaxInvalid = 10
	DefaultMinCost    = 0
	DefaultMaxCost    = 6

	// maxLineBytes bounds a single input line for the scanner.
	maxLineBytes = 1 << 20
)

// ErrUnknownPolicy is returned for an unrecognised UnparsableCost value.
var ErrUnknownPolicy = errors.New("unknown unparsable-cost policy")

// AbortReason explains why a tally failed.
type AbortReason string

const (
	AbortNone           AbortReason = ""
	AbortTooManyLines   AbortReason = "too-many-lines"
	AbortTooManyInvalid AbortReason = "too-many-invalid"
	AbortReadError      AbortReason = "read-error"
)

// Policy carries the limits and name rules for one run. The zero value is
// not useful; start from DefaultPolicy or PolicyFromConfig.
type Policy struct {
	MaxLines       int
	MaxInvalid     int
	MinCost        int
	MaxCost        int
	UnparsableCost types.CostPolicy

	// Whitelist, when non-nil, rejects card names it does not contain.
	Whitelist *Whitelist
}

// DefaultPolicy returns the standard limits with no name checking.
func DefaultPolicy() Policy {
	return Policy{
		MaxLines:       DefaultMaxLines,
		MaxInvalid:     DefaultMaxInvalid,
		MinCost:        DefaultMinCost,
		MaxCost:        DefaultMaxCost,
		UnparsableCost: types.CostDrop,
	}
}

// PolicyFromConfig builds a Policy from configuration, loading the
// whitelist when enabled. Zero limits fall back to the defaults.
func PolicyFromConfig(cfg types.ParseConfig) (Policy, error) {
	p := DefaultPolicy()
	if cfg.MaxLines > 0 {
		p.MaxLines = cfg.MaxLines
	}
	if cfg.MaxInvalid > 0 {
		p.MaxInvalid = cfg.MaxInvalid
	}
	if cfg.MinCost != 0 || cfg.MaxCost != 0 {
		p.MinCost, p.MaxCost = cfg.MinCost, cfg.MaxCost
	}
	if p.MinCost > p.MaxCost {
		return Policy{}, fmt.Errorf("cost range [%d, %d] is empty", p.MinCost, p.MaxCost)
	}

	switch cfg.UnparsableCost {
	case "":
	case types.CostDrop, types.CostInvalid:
		p.UnparsableCost = cfg.UnparsableCost
	default:
		return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, cfg.UnparsableCost)
	}

	if cfg.Whitelist {
		var (
			wl  *Whitelist
			err error
		)
		if cfg.WhitelistFile != "" {
			wl, err = LoadWhitelist(cfg.WhitelistFile, cfg.FoldCase)
		} else {
			wl, err = DefaultWhitelist(cfg.FoldCase)
		}
		if err != nil {
			return Policy{}, err
		}
		p.Whitelist = wl
	}
	return p, nil
}

// Result is the outcome of a tally run.
type Result struct {
	Deck    types.Deck
	Invalid []types.InvalidLine

	// OK reports whether a summary report should be generated.
	OK bool

	// Reason is set when OK is false.
	Reason AbortReason

	// Lines is the number of lines consumed, including the one that
	// triggered an abort.
	Lines int

	// Dropped counts lines skipped because their cost was not an integer.
	Dropped int
}

// Total returns the deck's total energy cost.
func (r Result) Total() int {
	return r.Deck.Total()
}

// ParseFile opens path and tallies it. A read failure is returned alongside
// a failed Result so the caller can still take the void path.
func ParseFile(path string, p Policy) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return failed(AbortReadError), fmt.Errorf("opening deck file: %w", err)
	}
	defer f.Close()

	return Parse(f, p)
}

// Parse tallies deck text read from r.
func Parse(r io.Reader, p Policy) (Result, error) {
	t := newTallier(p)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		if !t.line(sc.Text()) {
			return t.result(), nil
		}
	}
	if err := sc.Err(); err != nil {
		res := t.result()
		res.OK = false
		res.Reason = AbortReadError
		return res, fmt.Errorf("reading deck: %w", err)
	}
	return t.result(), nil
}

// ParseLines tallies lines already split from their source.
func ParseLines(lines []string, p Policy) Result {
	t := newTallier(p)
	for _, l := range lines {
		if !t.line(l) {
			break
		}
	}
	return t.result()
}

func failed(reason AbortReason) Result {
	return Result{Deck: types.Deck{}, Reason: reason}
}

// tallier holds the running state of one Parse call.
type tallier struct {
	p       Policy
	deck    types.Deck
	invalid []types.InvalidLine
	lines   int
	dropped int
	reason  AbortReason
}

func newTallier(p Policy) *tallier {
	return &tallier{p: p, deck: types.Deck{}}
}

func (t *tallier) result() Result {
	return Result{
		Deck:    t.deck,
		Invalid: t.invalid,
		OK:      t.reason == AbortNone,
		Reason:  t.reason,
		Lines:   t.lines,
		Dropped: t.dropped,
	}
}

// line processes one raw line and reports whether parsing may continue.
func (t *tallier) line(raw string) bool {
	t.lines++
	if t.lines > t.p.MaxLines {
		t.reason = AbortTooManyLines
		return false
	}

	// The invalid cap is enforced as soon as it is crossed, so the count
	// never exceeds MaxInvalid+1 and a trailing rejection still fails.
	switch name, cost, v := t.classify(raw); v {
	case verdictValid:
		t.deck.Add(name, cost)
	case verdictDropped:
		t.dropped++
	case verdictInvalid:
		t.invalid = append(t.invalid, types.InvalidLine(raw))
		if len(t.invalid) > t.p.MaxInvalid {
			t.reason = AbortTooManyInvalid
			return false
		}
	}
	return true
}

type verdict int

const (
	verdictValid verdict = iota
	verdictInvalid
	verdictDropped
)

func (t *tallier) classify(raw string) (string, int, verdict) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return "", 0, verdictInvalid
	}

	name, costText, found := strings.Cut(line, ":")
	if !found {
		return "", 0, verdictInvalid
	}
	name = strings.TrimSpace(name)
	costText = strings.TrimSpace(costText)

	cost, err := strconv.Atoi(costText)
	if err != nil {
		if t.p.UnparsableCost == types.CostInvalid {
			return "", 0, verdictInvalid
		}
		return "", 0, verdictDropped
	}
	if cost < t.p.MinCost || cost > t.p.MaxCost {
		return "", 0, verdictInvalid
	}
	if name == "" {
		return "", 0, verdictInvalid
	}

	if t.p.Whitelist != nil {
		canonical, ok := t.p.Whitelist.Lookup(name)
		if !ok {
			return "", 0, verdictInvalid
		}
		name = canonical
	}
	return name, cost, verdictValid
}
