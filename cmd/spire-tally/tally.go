// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/spire-tally/internal/deckid"
	"github.com/pdiddy/spire-tally/internal/pipeline"
	"github.com/pdiddy/spire-tally/internal/report"
	"github.com/pdiddy/spire-tally/internal/tally"
)

const pathPrompt = "Enter the file path: "

func runTally(cmd *cobra.Command, args []string) error {
	path, err := deckPath(cmd, args)
	if err != nil {
		return err
	}

	policy, err := tally.PolicyFromConfig(appConfig.Parse)
	if err != nil {
		return err
	}

	store, err := deckid.Open(appConfig.IDStore, runID)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	alloc := deckid.NewAllocator(ctx, store, deckid.WithLogger(logger))
	renderer := report.NewRenderer(appConfig.Report, logger)

	_, err = pipeline.Run(ctx, pipeline.Options{
		InputPath: path,
		Policy:    policy,
		IDs:       alloc,
		Reports:   renderer,
		Log:       logger,
		Out:       cmd.OutOrStdout(),
	})
	return err
}

// deckPath returns the deck file named on the command line, or prompts for
// one on stdin.
func deckPath(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}

	fmt.Fprint(cmd.OutOrStdout(), pathPrompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading file path: %w", err)
	}
	// An empty answer is passed on and ends up as a void report in the
	// working directory.
	return strings.TrimSpace(line), nil
}
