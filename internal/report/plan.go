// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders deck tally results as PDF files.
//
// A report is first planned as an ordered list of Blocks and then drawn
// with fpdf. The plan is what tests inspect; colours and coordinates are a
// rendering detail.
package report

import (
	"fmt"

	"github.com/pdiddy/spire-tally/pkg/types"
)

const (
	Title          = "SLAY THE SPIRE DECK COST TALLY REPORT"
	VoidMarker     = "VOID"
	LabelDeckID    = "Deck ID"
	LabelTotalCost = "Total Cost"
	HeadingInvalid = "Invalid Cards"
	HeadingHisto   = "Histogram of Cards"
)

// FileName returns the report file name for id.
func FileName(id types.DeckID, void bool) string {
	if void {
		return fmt.Sprintf("SpireDeck_%s(VOID).pdf", id)
	}
	return fmt.Sprintf("SpireDeck_%s.pdf", id)
}

// BlockKind identifies what a Block draws.
type BlockKind int

const (
	BlockBanner BlockKind = iota
	BlockField
	BlockHeading
	BlockText
	BlockBar
	BlockMarker
)

func (k BlockKind) String() string {
	switch k {
	case BlockBanner:
		return "banner"
	case BlockField:
		return "field"
	case BlockHeading:
		return "heading"
	case BlockText:
		return "text"
	case BlockBar:
		return "bar"
	case BlockMarker:
		return "marker"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is one unit of report content.
type Block struct {
	Kind  BlockKind
	Label string // BlockField only
	Text  string
	Entry types.DeckEntry // BlockBar only
}

// Line returns the text a Block prints.
func (b Block) Line() string {
	switch b.Kind {
	case BlockField:
		return b.Label + ": " + b.Text
	case BlockHeading:
		return b.Text + ":"
	case BlockBar:
		return fmt.Sprintf("%s (%d energy)", b.Entry.Name, b.Entry.Cost)
	}
	return b.Text
}

// Summary is the input for a full report.
type Summary struct {
	DeckID  types.DeckID
	Total   int
	Deck    types.Deck
	Invalid []types.InvalidLine
}

// Plan lays out a summary report: banner, deck ID, total cost, invalid
// lines verbatim, then one histogram bar per deck entry in name order.
func Plan(s Summary) []Block {
	blocks := []Block{
		{Kind: BlockBanner, Text: Title},
		{Kind: BlockField, Label: LabelDeckID, Text: s.DeckID.String()},
		{Kind: BlockField, Label: LabelTotalCost, Text: fmt.Sprintf("%d energy", s.Total)},
		{Kind: BlockHeading, Text: HeadingInvalid},
	}
	for _, line := range s.Invalid {
		blocks = append(blocks, Block{Kind: BlockText, Text: string(line)})
	}
	blocks = append(blocks, Block{Kind: BlockHeading, Text: HeadingHisto})
	for _, e := range s.Deck.Entries() {
		blocks = append(blocks, Block{Kind: BlockBar, Entry: e})
	}
	return blocks
}

// PlanVoid lays out a void report: banner, deck ID and the VOID marker.
func PlanVoid(id types.DeckID) []Block {
	return []Block{
		{Kind: BlockBanner, Text: Title},
		{Kind: BlockField, Label: LabelDeckID, Text: id.String()},
		{Kind: BlockMarker, Text: VoidMarker},
	}
}
