/*
main.go - staffctl: operational CLI for the staffing engine

PURPOSE:
  Runs maintenance operations directly against the SQLite database,
  without going through the HTTP API. Useful for cron jobs and ops
  one-offs where the server is not running.

COMMANDS:
  autocomplete  Complete active assignments whose end date has passed
  recalc        Re-derive budget costs for a project's slots
  kpis          Print a project's planned-vs-actual rollup

EXAMPLES:
  # Nightly cron sweep
  staffctl --db=./data/staffing.db autocomplete --actor=cron

  # After a contract price change
  staffctl --db=./data/staffing.db recalc proj-atlas --actor=ops

  # Inspect a project
  staffctl --db=./data/staffing.db kpis proj-atlas

SEE ALSO:
  - cmd/server/main.go: The HTTP server
  - staffing/engine.go, staffing/planner.go: The operations behind the commands
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/staffing-engine/staffing"
	"github.com/warp/staffing-engine/store/sqlite"
)

var (
	dbPath string
	actor  string
)

func main() {
	root := &cobra.Command{
		Use:           "staffctl",
		Short:         "Operational CLI for the staffing engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "staffing.db", "SQLite database path")
	root.PersistentFlags().StringVar(&actor, "actor", "staffctl", "actor recorded on mutations")

	root.AddCommand(autocompleteCmd(), recalcCmd(), kpisCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withStore opens the database for a command run.
func withStore(fn func(ctx context.Context, store *sqlite.Store) error) error {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func autocompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "autocomplete",
		Short: "Complete active assignments whose end date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(func(ctx context.Context, store *sqlite.Store) error {
				engine := staffing.NewAssignmentEngine(store)
				result, err := engine.AutoCompleteAssignments(ctx, actor)
				if err != nil {
					return err
				}
				fmt.Printf("Completed %d assignment(s)\n", result.CompletedCount)
				for _, id := range result.CompletedIDs {
					fmt.Printf("  %s\n", id)
				}
				for _, msg := range result.Errors {
					fmt.Fprintf(os.Stderr, "  skipped: %s\n", msg)
				}
				return nil
			})
		},
	}
}

func recalcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalc <project-id>",
		Short: "Re-derive budget costs for a project's slots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store *sqlite.Store) error {
				planner := staffing.NewSlotPlanner(store)
				updated, err := planner.RecalculateBudgetCosts(ctx, staffing.ProjectID(args[0]), actor)
				if err != nil {
					return err
				}
				fmt.Printf("Updated %d slot(s)\n", updated)
				return nil
			})
		},
	}
}

func kpisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kpis <project-id>",
		Short: "Print a project's planned-vs-actual rollup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store *sqlite.Store) error {
				planner := staffing.NewSlotPlanner(store)
				kpis, err := planner.GetProjectKPIs(ctx, staffing.ProjectID(args[0]))
				if err != nil {
					return err
				}
				fmt.Printf("Project:                %s\n", kpis.ProjectID)
				fmt.Printf("Planned cost:           %s\n", kpis.PlannedCost.StringFixed(2))
				fmt.Printf("Actual cost:            %s\n", kpis.ActualCost.StringFixed(2))
				fmt.Printf("Variance:               %s (%s%% of plan)\n",
					kpis.Variance.StringFixed(2), kpis.VarianceOfPlannedPct.StringFixed(2))
				fmt.Printf("Planned allocation:     %s%%\n", kpis.PlannedAllocationPct)
				fmt.Printf("Utilized allocation:    %s%%\n", kpis.UtilizedAllocationPct)
				fmt.Printf("Remaining allocation:   %s%%\n", kpis.RemainingAllocationPct)
				fmt.Printf("Active assignments:     %d\n", kpis.ActiveAssignments)
				fmt.Printf("Completed assignments:  %d\n", kpis.CompletedAssignments)
				fmt.Printf("Average utilization:    %s%%\n", kpis.AverageUtilizationPct.StringFixed(2))
				return nil
			})
		},
	}
}
