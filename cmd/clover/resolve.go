package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	resolvePrimary string
	resolveReject  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <group-id>",
	Short: "Merge or reject a duplicate group",
	Long: `Resolve an unresolved duplicate group. By default the group's members
are merged into a single contact using the deterministic merge policy. With
--reject the group is marked a false positive and its member pairs are
excluded from future matching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		groupID := args[0]

		if resolveReject {
			if resolvePrimary != "" {
				return fmt.Errorf("--primary and --reject are mutually exclusive")
			}
			if err := pipeline.RejectGroup(ctx, groupID); err != nil {
				return err
			}
			fmt.Printf("Group %s marked as false positive\n", groupID)
			return nil
		}

		merged, err := pipeline.ResolveGroup(ctx, groupID, resolvePrimary)
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s group %s into %s (%s)\n", green("Merged"), groupID, merged.Primary.ID, merged.Primary.FullName())
		fmt.Printf("  Absorbed: %d contacts, kept %d contact points\n", len(merged.Repointed), len(merged.ContactPoints))
		for _, conflict := range merged.Conflicts {
			fmt.Printf("  Conflict on %s: kept %q\n", conflict.Field, conflict.ResolvedValue)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().StringVar(&resolvePrimary, "primary", "", "contact ID to keep as the merge primary")
	resolveCmd.Flags().BoolVar(&resolveReject, "reject", false, "mark the group as a false positive instead of merging")
	rootCmd.AddCommand(resolveCmd)
}
