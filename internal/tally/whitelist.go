// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tally

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed cards.yaml
var defaultCards []byte

// whitelistFile is the on-disk shape of a card whitelist.
type whitelistFile struct {
	Cards []string `yaml:"cards"`
}

// Whitelist is a fixed set of recognised card names.
type Whitelist struct {
	foldCase bool
	names    map[string]string // lookup key -> canonical spelling
}

// NewWhitelist builds a whitelist from names. With foldCase, lookups ignore
// case and resolve to the spelling given here.
func NewWhitelist(names []string, foldCase bool) *Whitelist {
	w := &Whitelist{foldCase: foldCase, names: make(map[string]string, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		w.names[w.key(n)] = n
	}
	return w
}

// LoadWhitelist reads a YAML whitelist file with a top-level "cards" list.
func LoadWhitelist(path string, foldCase bool) (*Whitelist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading whitelist: %w", err)
	}
	return parseWhitelist(data, foldCase)
}

// DefaultWhitelist returns the built-in card list.
func DefaultWhitelist(foldCase bool) (*Whitelist, error) {
	return parseWhitelist(defaultCards, foldCase)
}

func parseWhitelist(data []byte, foldCase bool) (*Whitelist, error) {
	var wf whitelistFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing whitelist: %w", err)
	}
	if len(wf.Cards) == 0 {
		return nil, fmt.Errorf("whitelist has no cards")
	}
	return NewWhitelist(wf.Cards, foldCase), nil
}

// Lookup reports whether name is recognised and returns its canonical spelling.
func (w *Whitelist) Lookup(name string) (string, bool) {
	canonical, ok := w.names[w.key(name)]
	return canonical, ok
}

// Len returns the number of distinct names.
func (w *Whitelist) Len() int {
	return len(w.names)
}

func (w *Whitelist) key(name string) string {
	if w.foldCase {
		return strings.ToLower(name)
	}
	return name
}
