// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"sort"
)

// DeckEntry is one card line after validation: a card name and its energy cost.
type DeckEntry struct {
	// Name is the card name as it appeared in the input (or its whitelist
	// spelling when case folding is enabled).
	Name string `json:"name" yaml:"name"`

	// Cost is the energy cost. For a single input line it is in [0, 6];
	// for an aggregated Deck entry it is the sum over repeated lines.
	Cost int `json:"cost" yaml:"cost"`
}

// Deck maps card name to accumulated energy cost.
type Deck map[string]int

// Add accumulates cost onto name, creating the entry if absent.
func (d Deck) Add(name string, cost int) {
	d[name] += cost
}

// Total returns the sum of all accumulated costs.
func (d Deck) Total() int {
	total := 0
	for _, cost := range d {
		total += cost
	}
	return total
}

// Entries returns the deck as a slice sorted by card name.
func (d Deck) Entries() []DeckEntry {
	entries := make([]DeckEntry, 0, len(d))
	for name, cost := range d {
		entries = append(entries, DeckEntry{Name: name, Cost: cost})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// InvalidLine is the raw text of a rejected input line, kept verbatim.
type InvalidLine string

// DeckIDDigits is the fixed width of a DeckID.
const DeckIDDigits = 9

// DeckID is a 9-digit numeric identifier stamped on a report and its file name.
type DeckID string

// FormatDeckID renders n as a zero-padded DeckID.
func FormatDeckID(n int) DeckID {
	return DeckID(fmt.Sprintf("%0*d", DeckIDDigits, n))
}

// ParseDeckID validates s as a DeckID.
func ParseDeckID(s string) (DeckID, error) {
	if len(s) != DeckIDDigits {
		return "", fmt.Errorf("deck ID %q: want %d digits, got %d", s, DeckIDDigits, len(s))
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("deck ID %q: non-digit %q", s, c)
		}
	}
	return DeckID(s), nil
}

func (id DeckID) String() string {
	return string(id)
}
