package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/pkg/models"
)

var reportStatus string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List duplicate groups by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.ResolutionStatus(reportStatus)
		switch status {
		case models.ResolutionUnresolved, models.ResolutionConfirmed, models.ResolutionFalsePositive:
		default:
			return fmt.Errorf("unknown status %q", reportStatus)
		}

		found, err := groups.ListByStatus(context.Background(), status)
		if err != nil {
			return err
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("%s duplicate groups: %d\n", yellow(reportStatus), len(found))
		for _, g := range found {
			line := fmt.Sprintf("  %s  members=%d  created=%s", g.ID, g.MemberCount, g.CreatedAt.Format("2006-01-02 15:04"))
			if g.PrimaryContactID != nil {
				line += fmt.Sprintf("  primary=%s", *g.PrimaryContactID)
			}
			fmt.Println(line)
			fmt.Printf("    %s\n", gray("cluster "+g.ClusterKey[:16]))
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportStatus, "status", "unresolved", "group status to list (unresolved, confirmed, false_positive)")
	rootCmd.AddCommand(reportCmd)
}
