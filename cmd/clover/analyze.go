package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var analyzeShowEdges bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Detect duplicates without persisting anything",
	Long: `Run the detection funnel and print the resulting clusters without
writing duplicate groups or touching contact records. Useful for tuning
thresholds before a real flag run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pipeline.AnalyzeDuplicates(context.Background())
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("%s\n", cyan("=== Duplicate Analysis ==="))
		fmt.Printf("Contacts: %d  Edges: %d  Clusters: %d\n",
			result.RecordCount, result.EdgeCount, len(result.Clusters))

		for i, cluster := range result.Clusters {
			fmt.Printf("\n%s %s\n", yellow(fmt.Sprintf("Cluster %d", i+1)), cluster.ID[:12])
			fmt.Printf("  Members: %s\n", strings.Join(cluster.Members, ", "))
		}

		if analyzeShowEdges {
			fmt.Printf("\n%s\n", cyan("=== Match Edges ==="))
			for _, edge := range result.Edges {
				fmt.Printf("  [%s] %s <-> %s", edge.Tier, edge.A, edge.B)
				if edge.Score > 0 {
					fmt.Printf(" (%.3f)", edge.Score)
				}
				if edge.MatchValue != "" {
					fmt.Printf("  %s", edge.MatchValue)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeShowEdges, "edges", false, "print individual match edges")
	rootCmd.AddCommand(analyzeCmd)
}
