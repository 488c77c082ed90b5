package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// farmCmd represents the farm command
var farmCmd = &cobra.Command{
	Use:   "farm",
	Short: "Query the Deadline webservice",
	Long:  `Commands for listing the pools, groups, limit groups and workers known to the configured Deadline webservice.`,
}

var farmPoolsCmd = &cobra.Command{
	Use:   "pools",
	Short: "List the pools of the farm",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmListing(cmd.Context(), "Pool", newDeadlineClient().Pools)
	},
}

var farmGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups of the farm",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmListing(cmd.Context(), "Group", newDeadlineClient().Groups)
	},
}

var farmLimitGroupsCmd = &cobra.Command{
	Use:   "limit-groups",
	Short: "List the limit groups of the farm",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmListing(cmd.Context(), "Limit Group", newDeadlineClient().LimitGroups)
	},
}

var farmWorkersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the worker names of the farm",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFarmListing(cmd.Context(), "Worker", newDeadlineClient().Workers)
	},
}

func init() {
	rootCmd.AddCommand(farmCmd)
	farmCmd.AddCommand(farmPoolsCmd)
	farmCmd.AddCommand(farmGroupsCmd)
	farmCmd.AddCommand(farmLimitGroupsCmd)
	farmCmd.AddCommand(farmWorkersCmd)
}

func runFarmListing(ctx context.Context, header string, fetch func(context.Context) ([]string, error)) error {
	names, err := fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to query webservice: %w", err)
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	if len(names) == 0 {
		fmt.Println("Nothing found")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(header)
	for _, name := range names {
		table.Append(name)
	}
	table.Render()
	fmt.Printf("\nTotal: %d\n", len(names))
	return nil
}
