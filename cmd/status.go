package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/scaling-cli/internal/monitoring"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cycle health over the monitoring window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snap, err := monitoring.NewCollector(st).Collect(ctx, cfg.Monitor.LookbackHours)
		if err != nil {
			return err
		}
		alerts := monitoring.NewChecker(cfg.Monitor).Evaluate(snap)

		if statusJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Snapshot *monitoring.MetricsSnapshot `json:"snapshot"`
				Alerts   []monitoring.Alert          `json:"alerts"`
			}{snap, alerts})
		}

		fmt.Printf("Cycles (last %dh):  %d total, %d complete, %d failed, %d no-opportunity\n",
			snap.LookbackHours, snap.CyclesTotal, snap.CyclesComplete, snap.CyclesFailed, snap.CyclesNoOpportunity)
		fmt.Printf("Actions:            %d executed, %d failed (avg success %.1f%%)\n",
			snap.ActionsExecuted, snap.ActionsFailed, snap.AvgSuccessRate)
		fmt.Printf("Investment:         $%.2f for $%.2f expected return\n",
			snap.TotalInvestment, snap.TotalExpectedReturn)
		if snap.Counters != nil {
			fmt.Printf("Lifetime:           %d actions, $%.2f cumulative return, last cycle %s\n",
				snap.Counters.ActionsExecuted, snap.Counters.CumulativeReturn,
				snap.Counters.LastCycle.Format("2006-01-02 15:04:05 MST"))
		}

		if len(alerts) == 0 {
			fmt.Println("\nNo alerts.")
			return nil
		}
		fmt.Printf("\nAlerts (%d):\n", len(alerts))
		for _, a := range alerts {
			fmt.Printf("  [%s] %s: %s\n", a.Severity, a.Type, a.Message)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit JSON instead of text")
	rootCmd.AddCommand(statusCmd)
}
