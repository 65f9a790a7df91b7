package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Detect duplicates and persist review groups",
	Long: `Run the full detection funnel over all contacts, cluster the matches,
and persist an unresolved duplicate group for each cluster. Groups previously
rejected as false positives are not re-proposed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pipeline.FlagDuplicates(context.Background())
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("Scanned %d contacts, found %d match edges\n", result.RecordCount, result.EdgeCount)
		if result.ExcludedEdges > 0 {
			fmt.Printf("  %s\n", gray(fmt.Sprintf("%d edges suppressed by excluded pairs", result.ExcludedEdges)))
		}
		if result.SkippedEmptyName > 0 {
			fmt.Printf("  %s\n", gray(fmt.Sprintf("%d contacts skipped by fuzzy tier (empty name)", result.SkippedEmptyName)))
		}
		if result.RetiredGroups > 0 {
			fmt.Printf("  %s\n", gray(fmt.Sprintf("%d superseded groups retired", result.RetiredGroups)))
		}
		fmt.Printf("%s: %d clusters, %d new groups\n", green("Flagged"), len(result.Clusters), result.NewGroups)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(flagCmd)
}
