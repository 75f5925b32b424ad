package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/extraction"
	"github.com/wouterstultiens/boardgame-finder/internal/matching"
)

type matchOutput struct {
	Name       string  `json:"name"`
	Language   string  `json:"language"`
	Method     string  `json:"method"`
	Candidates int     `json:"candidates"`
	Decision   string  `json:"decision"`
	ID         int     `json:"id,omitempty"`
	Match      string  `json:"match,omitempty"`
	Link       string  `json:"link,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "match <name>",
		Short: "Resolve one game name against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args, " "))
			resolver, _, err := ctx.resolver(cmd.Context())
			if err != nil {
				return err
			}
			query := matching.Query{Name: name, Language: extraction.NormalizeLanguage(language)}
			candidates := resolver.Candidates(name)
			m, err := resolver.Resolve(cmd.Context(), query, candidates)
			if err != nil {
				return err
			}

			result := matchOutput{
				Name:       name,
				Language:   query.Language,
				Method:     matching.Method(resolver),
				Candidates: len(candidates),
				Decision:   m.Decision,
			}
			if m.Matched() {
				result.ID = m.Entry.ID
				result.Match = m.Entry.Name
				result.Link = m.Entry.Link()
				result.Score = m.Score
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:       %s\n", result.Name)
			fmt.Fprintf(out, "Method:     %s\n", result.Method)
			fmt.Fprintf(out, "Candidates: %d\n", result.Candidates)
			fmt.Fprintf(out, "Decision:   %s\n", result.Decision)
			if !m.Matched() {
				fmt.Fprintln(out, "Match:      none")
				return nil
			}
			fmt.Fprintf(out, "Match:      %s (%d)\n", result.Match, result.ID)
			fmt.Fprintf(out, "Link:       %s\n", result.Link)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "unknown", "Language of the name (nl, en, unknown)")
	return cmd
}
