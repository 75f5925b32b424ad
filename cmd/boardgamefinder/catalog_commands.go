package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/catalog"
	"github.com/wouterstultiens/boardgame-finder/internal/config"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import the reference catalog",
	}
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	return catalogCmd
}

type candidateOutput struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Year  *int    `json:"year,omitempty"`
	Score float64 `json:"score"`
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Show the catalog candidates for a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			entries, err := ctx.catalogEntries(cmd.Context())
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = ctx.config.Matching.NumCandidates
			}
			idx := matching.NewIndex(entries, matching.WithCandidateCutoff(ctx.config.Matching.CandidateCutoff))
			candidates := idx.FindCandidates(name, limit)

			if ctx.jsonOutput() {
				out := make([]candidateOutput, 0, len(candidates))
				for _, c := range candidates {
					out = append(out, candidateOutput{ID: c.Entry.ID, Name: c.Entry.Name, Year: c.Entry.YearPublished, Score: c.Score})
				}
				return writeJSON(cmd, out)
			}
			if len(candidates) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No catalog entries resemble %q\n", name)
				return nil
			}
			rows := make([][]string, 0, len(candidates))
			for _, c := range candidates {
				rows = append(rows, []string{strconv.Itoa(c.Entry.ID), c.Entry.Name, yearString(c.Entry), scoreString(c.Score)})
			}
			return writeRows(cmd.OutOrStdout(), []string{"ID", "Name", "Year", "Score"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum candidates (defaults to matching.num_candidates)")
	return cmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import <csv>",
		Short: "Load a catalog CSV into the SQLite catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			csvPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			target := strings.TrimSpace(dbPath)
			if target == "" {
				target = ctx.config.Catalog.SQLitePath
			} else if target, err = config.ExpandPath(target); err != nil {
				return err
			}

			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("open catalog csv: %w", err)
			}
			defer file.Close()
			entries, err := catalog.ParseCSV(file)
			if err != nil {
				return err
			}
			clean := catalog.Sanitize(entries, ctx.loggerValue())

			repo, err := catalog.OpenSQLite(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer repo.Close()
			inserted, err := repo.Replace(cmd.Context(), clean)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d catalog entries into %s\n", inserted, len(entries), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file (defaults to catalog.sqlite_path)")
	return cmd
}
