package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var autoMergeCmd = &cobra.Command{
	Use:   "automerge",
	Short: "Merge high-confidence duplicates without review",
	Long: `Detect duplicates holding fuzzy matches to the auto-merge similarity
threshold and merge every resulting cluster immediately. Exact, composite, and
fingerprint matches are unaffected by the stricter bar.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		merges, err := pipeline.AutoMerge(context.Background())
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s: %d clusters merged\n", green("Auto-merge"), len(merges))
		for _, m := range merges {
			fmt.Printf("  %s (%s) absorbed %d contacts\n", m.Primary.ID, m.Primary.FullName(), len(m.Repointed))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(autoMergeCmd)
}
