// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deckid

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/pdiddy/spire-tally/pkg/types"
)

// idSpace is the number of distinct 9-digit IDs.
const idSpace = 1_000_000_000

var (
	// ErrNotPersisted marks an ID that was issued but could not be written
	// to the store. The ID is still usable.
	ErrNotPersisted = errors.New("deck id not persisted")

	// ErrExhausted is returned when every ID has been issued.
	ErrExhausted = errors.New("deck id space exhausted")
)

// Allocator issues deck IDs not present in its store.
type Allocator struct {
	store  Store
	issued map[types.DeckID]struct{}
	intN   func(n int) int
	log    *zap.Logger
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for load and persist warnings.
func WithLogger(l *zap.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// WithIntN replaces the random source. fn must return a value in [0, n).
func WithIntN(fn func(n int) int) Option {
	return func(a *Allocator) { a.intN = fn }
}

// NewAllocator loads the issued set from store. A store that cannot be read
// is treated as empty and logged; this is the normal state on a first run.
func NewAllocator(ctx context.Context, store Store, opts ...Option) *Allocator {
	a := &Allocator{
		store:  store,
		issued: make(map[types.DeckID]struct{}),
		intN:   rand.IntN,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	ids, err := store.Load(ctx)
	if err != nil {
		a.log.Warn("id log unreadable, starting from an empty set", zap.Error(err))
	}
	for _, id := range ids {
		a.issued[id] = struct{}{}
	}
	a.log.Debug("id log loaded", zap.Int("issued", len(a.issued)))
	return a
}

// Issued reports whether id has been issued.
func (a *Allocator) Issued(id types.DeckID) bool {
	_, ok := a.issued[id]
	return ok
}

// Len returns the number of known issued IDs.
func (a *Allocator) Len() int {
	return len(a.issued)
}

// Next draws a fresh ID, records it in memory and appends it to the store.
//
// When the append fails Next still returns the ID, together with an error
// wrapping ErrNotPersisted. A later run may then reissue the same ID.
func (a *Allocator) Next(ctx context.Context) (types.DeckID, error) {
	if len(a.issued) >= idSpace {
		return "", ErrExhausted
	}

	var id types.DeckID
	for {
		id = types.FormatDeckID(a.intN(idSpace))
		if _, taken := a.issued[id]; !taken {
			break
		}
		a.log.Debug("deck id collision, resampling", zap.String("id", id.String()))
	}
	a.issued[id] = struct{}{}

	if err := a.store.Append(ctx, id); err != nil {
		return id, fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return id, nil
}
