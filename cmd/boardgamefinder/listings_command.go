package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
	"github.com/wouterstultiens/boardgame-finder/internal/store"
)

func newListingsCommand(ctx *commandContext) *cobra.Command {
	var matchedOnly, unmatchedOnly bool
	var outcome string
	var limit int

	cmd := &cobra.Command{
		Use:   "listings",
		Short: "List enriched listings from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if matchedOnly && unmatchedOnly {
				return errors.New("--matched and --unmatched are mutually exclusive")
			}
			filter := store.Filter{Limit: limit}
			if matchedOnly || unmatchedOnly {
				filter.Matched = &matchedOnly
			}
			switch pipeline.Outcome(outcome) {
			case "", pipeline.OutcomeFound, pipeline.OutcomeNone, pipeline.OutcomeFailed:
				filter.Outcome = pipeline.Outcome(outcome)
			default:
				return fmt.Errorf("--outcome must be found, none, or failed, got %q", outcome)
			}

			s, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			items, err := s.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored listings")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, listingSummaryRow(item))
			}
			return writeRows(cmd.OutOrStdout(), []string{"Key", "Title", "Outcome", "Games", "Matched"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
		},
	}

	cmd.Flags().BoolVar(&matchedOnly, "matched", false, "Only listings with at least one matched game")
	cmd.Flags().BoolVar(&unmatchedOnly, "unmatched", false, "Only listings without matched games")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Filter by extraction outcome (found, none, failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum listings to show (0 for all)")
	return cmd
}
