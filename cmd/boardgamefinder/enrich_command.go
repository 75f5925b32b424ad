package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/listing"
	"github.com/wouterstultiens/boardgame-finder/internal/ocr"
	"github.com/wouterstultiens/boardgame-finder/internal/pipeline"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var l listing.Listing
	var save bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Identify the games in a single listing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if l.Title == "" && l.Description == "" && len(l.ImageTexts) == 0 {
				return fmt.Errorf("provide at least --title, --description, or --image-text")
			}
			resolver, oracle, err := ctx.resolver(cmd.Context())
			if err != nil {
				return err
			}
			if oracle == nil {
				if oracle, err = ctx.oracle(); err != nil {
					return err
				}
			}
			enricher := pipeline.NewEnricher(ctx.extractor(oracle), resolver, ctx.loggerValue(),
				pipeline.WithOCR(ocr.New(ctx.config, ctx.loggerValue())),
				pipeline.WithNameConcurrency(ctx.config.Pipeline.NameConcurrency),
			)
			item := enricher.Enrich(cmd.Context(), l)

			if save {
				s, err := ctx.openStore(cmd.Context())
				if err != nil {
					return err
				}
				if err := s.Save(cmd.Context(), item); err != nil {
					return err
				}
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, item)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Outcome: %s\n", item.Outcome)
			if len(item.Games) == 0 {
				fmt.Fprintln(out, "No games found")
				return nil
			}
			return writeRows(out, gameHeaders, gameRows(item.Games), nil)
		},
	}

	cmd.Flags().StringVar(&l.Title, "title", "", "Listing title")
	cmd.Flags().StringVar(&l.Description, "description", "", "Listing description")
	cmd.Flags().StringVar(&l.Link, "link", "", "Listing URL (required with --save)")
	cmd.Flags().StringArrayVar(&l.Images, "image", nil, "Image URL (repeatable)")
	cmd.Flags().StringArrayVar(&l.ImageTexts, "image-text", nil, "OCR text of an image (repeatable)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the result to the listing store")
	return cmd
}
