package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wouterstultiens/boardgame-finder/internal/evaluation"
)

func newEvaluateCommand(ctx *commandContext) *cobra.Command {
	var casesPath string

	cmd := &cobra.Command{
		Use:       "evaluate [extractor|matcher]",
		Short:     "Score the extractor or the matcher against labelled cases",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{evaluation.KindExtractor, evaluation.KindMatcher},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := evaluation.KindExtractor
			if len(args) == 1 {
				kind = args[0]
			}
			cases, err := evaluation.LoadCases(casesPath)
			if err != nil {
				return err
			}

			var report evaluation.Report
			switch kind {
			case evaluation.KindMatcher:
				resolver, _, err := ctx.resolver(cmd.Context())
				if err != nil {
					return err
				}
				report = evaluation.EvaluateMatcher(cmd.Context(), resolver, cases)
			default:
				oracle, err := ctx.oracle()
				if err != nil {
					return err
				}
				report = evaluation.EvaluateExtractor(cmd.Context(), ctx.extractor(oracle), cases)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(report.Items))
			for _, item := range report.Items {
				rows = append(rows, []string{item.Case, truncate(item.Input, 40), string(item.Label), item.Expected, item.Actual})
			}
			if err := writeRows(out, []string{"Case", "Input", "Result", "Expected", "Actual"}, rows, nil); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s summary (%d items)\n", report.Kind, report.Total())
			return report.WriteSummary(out)
		},
	}

	cmd.Flags().StringVar(&casesPath, "cases", "evaluation/cases.yaml", "YAML case file")
	return cmd
}
