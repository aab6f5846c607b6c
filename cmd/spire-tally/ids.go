// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/spire-tally/internal/deckid"
	"github.com/pdiddy/spire-tally/pkg/types"
)

var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "List the deck IDs issued so far",
	Long: `IDs prints every deck ID recorded in the configured ID store, oldest first.
With the sqlite backend, --run limits the listing to the IDs issued by one
invocation; each invocation logs its run ID.`,
	Args: cobra.NoArgs,
	RunE: runIDs,
}

func init() {
	idsCmd.Flags().Bool("json", false, "output IDs as JSON")
	idsCmd.Flags().Bool("yaml", false, "output IDs as YAML")
	idsCmd.Flags().String("run", "", "only IDs issued by this run (sqlite backend)")
	idsCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(idsCmd)
}

// idListing is the structured form of the ids output.
type idListing struct {
	Count int            `json:"count" yaml:"count"`
	IDs   []types.DeckID `json:"ids" yaml:"ids"`
}

func runIDs(cmd *cobra.Command, args []string) error {
	run, _ := cmd.Flags().GetString("run")

	store, err := deckid.Open(appConfig.IDStore, runID)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var ids []types.DeckID
	if run != "" {
		sq, ok := store.(*deckid.SQLiteStore)
		if !ok {
			return fmt.Errorf("--run requires the %s id store backend, have %s",
				types.IDStoreSQLite, appConfig.IDStore.Backend)
		}
		ids, err = sq.IssuedBy(ctx, run)
	} else {
		ids, err = store.Load(ctx)
	}
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	return formatIDs(cmd.OutOrStdout(), ids, jsonOutput, yamlOutput)
}

func formatIDs(w io.Writer, ids []types.DeckID, jsonOutput, yamlOutput bool) error {
	listing := idListing{Count: len(ids), IDs: ids}
	if listing.IDs == nil {
		listing.IDs = []types.DeckID{}
	}

	switch {
	case jsonOutput:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case yamlOutput:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return fmt.Errorf("encoding ids: %w", err)
		}
		return enc.Close()
	}

	if len(ids) == 0 {
		fmt.Fprintln(w, "No deck IDs issued yet.")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	fmt.Fprintf(w, "\n%d ids\n", len(ids))
	return nil
}
