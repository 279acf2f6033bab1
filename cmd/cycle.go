package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/scaling-cli/internal/source"
)

var cycleInput string

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one scaling cycle over a candidate file",
	Long: `Loads candidates from a JSON or YAML file, scores them, executes the
ranked scaling plans and prints the cycle summary as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("cycle"); err != nil {
			return err
		}

		candidates, err := source.LoadFile(cycleInput)
		if err != nil {
			return err
		}

		eng, st, err := initEngine(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		summary, err := eng.RunCycle(ctx, candidates)
		if err != nil {
			return eris.Wrap(err, "run cycle")
		}

		zap.L().Info("cycle finished",
			zap.String("status", string(summary.Status)),
			zap.Int("candidates", summary.CandidatesScored),
			zap.Int("selected", summary.ScalingCandidates),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	cycleCmd.Flags().StringVar(&cycleInput, "input", "", "candidate file, .json or .yaml (required)")
	_ = cycleCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cycleCmd)
}
