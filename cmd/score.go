package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/scaling-cli/internal/config"
	"github.com/sells-group/scaling-cli/internal/model"
	"github.com/sells-group/scaling-cli/internal/scorer"
	"github.com/sells-group/scaling-cli/internal/source"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score and rank candidates without executing",
	Long: `Scores candidates from a JSON or YAML file on the weighted opportunity
metrics, builds their scaling plans and prints the ranking. Nothing is
executed or persisted.

Examples:
  # Rank all candidates
  score --input candidates.json

  # Rank everything, not just the top concurrent slots
  score --input candidates.json --all

  # Export to CSV
  score --input candidates.yaml --format csv --output ranking.csv`,
	RunE: runScore,
}

func init() {
	f := scoreCmd.Flags()
	f.String("input", "", "candidate file, .json or .yaml (required)")
	f.Bool("all", false, "rank every candidate instead of truncating to max_concurrent")
	f.Float64("min-score", -1, "minimum opportunity score (overrides config)")
	f.String("output", "", "output file path (default: stdout)")
	f.String("format", "table", "output format: table, csv or json")
	_ = scoreCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("score: --format must be table, csv or json (got %q)", format)
	}

	scorerCfg := applyScorerOverrides(cmd, cfg.Scorer)
	if err := scorer.ValidateConfig(scorerCfg); err != nil {
		return err
	}

	candidates, err := source.LoadFile(input)
	if err != nil {
		return err
	}

	ranked := scorer.ScoreCandidates(candidates, scorerCfg)
	zap.L().Info("scoring complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("ranked", len(ranked)),
	)

	if err := outputRanking(ranked, format, outputPath); err != nil {
		return err
	}
	if format == "table" && outputPath == "" {
		printRankingSummary(ranked)
	}
	return nil
}

// applyScorerOverrides returns a copy of the base config with CLI flag overrides applied.
func applyScorerOverrides(cmd *cobra.Command, base config.ScorerConfig) config.ScorerConfig {
	c := base

	if v, _ := cmd.Flags().GetFloat64("min-score"); v >= 0 {
		c.MinScore = v
	}
	if all, _ := cmd.Flags().GetBool("all"); all {
		c.MaxConcurrent = 0
	}

	return c
}

func outputRanking(ranked []model.RankedCandidate, format, outputPath string) error {
	var w *os.File
	if outputPath != "" {
		var err error
		w, err = os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", outputPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "csv":
		return writeRankingCSV(w, ranked)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(ranked), "score: write JSON")
	default:
		return writeRankingTable(w, ranked)
	}
}

func writeRankingCSV(w *os.File, ranked []model.RankedCandidate) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"rank", "id", "name", "daily_revenue", "growth_rate", "score", "estimated_roi", "actions", "total_budget"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "score: write CSV header")
	}

	for i, r := range ranked {
		row := []string{
			fmt.Sprintf("%d", i+1),
			r.Candidate.ID,
			r.Candidate.Name,
			fmt.Sprintf("%.2f", r.Candidate.DailyRevenue),
			fmt.Sprintf("%.1f", r.Metrics.GrowthRate),
			fmt.Sprintf("%.3f", r.Score),
			fmt.Sprintf("%.1f", r.EstimatedROI),
			strings.Join(actionKinds(r.Plan), "|"),
			fmt.Sprintf("%.2f", r.Plan.TotalBudget()),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "score: write CSV row")
		}
	}
	return nil
}

func writeRankingTable(w *os.File, ranked []model.RankedCandidate) error {
	p := message.NewPrinter(language.English)

	header := fmt.Sprintf("%-4s %-28s %12s %8s %6s %7s %10s  %s\n",
		"Rank", "Candidate", "Revenue/d", "Growth", "Score", "ROI", "Budget", "Actions")
	if _, err := fmt.Fprint(w, header); err != nil {
		return eris.Wrap(err, "score: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 100)); err != nil {
		return eris.Wrap(err, "score: write table separator")
	}

	for i, r := range ranked {
		name := r.Candidate.Name
		if name == "" {
			name = r.Candidate.ID
		}
		if len(name) > 28 {
			name = name[:25] + "..."
		}
		line := p.Sprintf("%-4d %-28s %12.2f %7.1f%% %6.3f %6.1f%% %10.2f  %s\n",
			i+1, name, r.Candidate.DailyRevenue, r.Metrics.GrowthRate,
			r.Score, r.EstimatedROI, r.Plan.TotalBudget(),
			strings.Join(actionKinds(r.Plan), ", "))
		if _, err := fmt.Fprint(w, line); err != nil {
			return eris.Wrap(err, "score: write table row")
		}
	}
	return nil
}

func printRankingSummary(ranked []model.RankedCandidate) {
	if len(ranked) == 0 {
		fmt.Println("No candidates met the scaling criteria.")
		return
	}

	p := message.NewPrinter(language.English)
	var totalBudget, totalReturn float64
	for _, r := range ranked {
		totalBudget += r.Plan.TotalBudget()
		totalReturn += r.Plan.TotalReturn()
	}

	fmt.Printf("\n--- Summary ---\n")
	p.Printf("Ranked:          %d\n", len(ranked))
	p.Printf("Total budget:    $%.2f\n", totalBudget)
	p.Printf("Expected return: $%.2f\n", totalReturn)
}

func actionKinds(plan model.ActionPlan) []string {
	kinds := make([]string, 0, len(plan.Actions))
	for _, a := range plan.Actions {
		kinds = append(kinds, string(a.Kind))
	}
	return kinds
}
