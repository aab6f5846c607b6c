// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/spire-tally/internal/tally"
	"github.com/pdiddy/spire-tally/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check [deck-file]",
	Short: "Tally a deck without issuing an ID or writing a report",
	Long: `Check runs the same validation as the root command and prints the per-card
totals, the rejected lines and the verdict. No deck ID is issued and no PDF is
written. The command exits non-zero when the deck would get a void report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("json", false, "output the tally as JSON")
	rootCmd.AddCommand(checkCmd)
}

// checkOutput is the JSON form of a tally.
type checkOutput struct {
	OK      bool                `json:"ok"`
	Reason  string              `json:"reason,omitempty"`
	Lines   int                 `json:"lines"`
	Dropped int                 `json:"dropped"`
	Total   int                 `json:"total"`
	Cards   []types.DeckEntry   `json:"cards"`
	Invalid []types.InvalidLine `json:"invalid"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := deckPath(cmd, args)
	if err != nil {
		return err
	}

	policy, err := tally.PolicyFromConfig(appConfig.Parse)
	if err != nil {
		return err
	}

	res, readErr := tally.ParseFile(path, policy)
	if readErr != nil {
		logger.Warn("deck file unreadable", zap.String("path", path), zap.Error(readErr))
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if err := formatCheckOutput(cmd.OutOrStdout(), res, readErr, jsonOutput); err != nil {
		return err
	}

	if !res.OK {
		return fmt.Errorf("deck would be void: %s", res.Reason)
	}
	return nil
}

func formatCheckOutput(w io.Writer, res tally.Result, readErr error, jsonOutput bool) error {
	if jsonOutput {
		out := checkOutput{
			OK:      res.OK,
			Reason:  string(res.Reason),
			Lines:   res.Lines,
			Dropped: res.Dropped,
			Total:   res.Total(),
			Cards:   res.Deck.Entries(),
			Invalid: res.Invalid,
		}
		if out.Cards == nil {
			out.Cards = []types.DeckEntry{}
		}
		if out.Invalid == nil {
			out.Invalid = []types.InvalidLine{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if readErr != nil {
		fmt.Fprintf(w, "warning: %v\n", readErr)
	}

	entries := res.Deck.Entries()
	if len(entries) > 0 {
		fmt.Fprintf(w, "%-30s  %s\n", "Card", "Cost")
		fmt.Fprintln(w, strings.Repeat("-", 36))
		for _, e := range entries {
			fmt.Fprintf(w, "%-30s  %4d\n", e.Name, e.Cost)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total: %d energy\n", res.Total())
	fmt.Fprintf(w, "Lines read: %d\n", res.Lines)
	if res.Dropped > 0 {
		fmt.Fprintf(w, "Dropped lines: %d\n", res.Dropped)
	}
	if len(res.Invalid) > 0 {
		fmt.Fprintf(w, "Invalid lines (%d):\n", len(res.Invalid))
		for _, l := range res.Invalid {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}

	if res.OK {
		fmt.Fprintln(w, "Verdict: ok")
	} else {
		fmt.Fprintf(w, "Verdict: void (%s)\n", res.Reason)
	}
	return nil
}
