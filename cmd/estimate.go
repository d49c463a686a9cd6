package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
	"github.com/stacksorbit/stacksorbit/internal/plan"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate deployment cost and time",
	Long: "Estimates gas and wall-clock time for deploying the discovered contracts,\n" +
		"plus the staged launch-phase funding bands for a full system launch.",
	RunE: runEstimate,
}

func init() {
	estimateCmd.Flags().String("phase", "", "show a single launch phase by key")
	estimateCmd.Flags().Bool("json", false, "emit the report as JSON")
	rootCmd.AddCommand(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	if key, _ := cmd.Flags().GetString("phase"); key != "" {
		phase, ok := plan.PhaseByKey(key)
		if !ok {
			return fmt.Errorf("unknown launch phase %q", key)
		}
		return printEstimate(cmd, phase)
	}

	parser := manifest.NewParser(category.NewTable(), logging.Sub(s.log, "discovery"))
	discovered, _ := parser.Discover(s.root)
	ordered := plan.SortByDependencyOrder(discovered)

	report := struct {
		Contracts        int             `json:"contracts"`
		EstimatedGas     float64         `json:"estimated_gas"`
		EstimatedMinutes int             `json:"estimated_time_minutes"`
		Launch           plan.LaunchCost `json:"launch_cost"`
	}{
		Contracts:        len(ordered),
		EstimatedGas:     plan.EstimateGas(ordered),
		EstimatedMinutes: plan.EstimateMinutes(ordered),
		Launch:           plan.EstimateLaunchCost(),
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	fmt.Printf("discovered contracts: %d\n", report.Contracts)
	fmt.Printf("estimated gas: %.1f units\n", report.EstimatedGas)
	fmt.Printf("estimated time: ~%d min\n", report.EstimatedMinutes)

	fmt.Println("\nlaunch phases (worst-case funding):")
	for _, phase := range report.Launch.Phases {
		fmt.Printf("  %-14s %8.0f STX  %s\n", phase.Key, phase.StX(), phase.Description)
	}
	fmt.Printf("\nfull launch: %.0f STX, %d gas\n",
		report.Launch.EstimatedSTXCost, report.Launch.TotalGasCost)
	return nil
}

func printEstimate(cmd *cobra.Command, phase plan.LaunchPhase) error {
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return json.NewEncoder(os.Stdout).Encode(phase)
	}
	fmt.Printf("%s (%s)\n", phase.Name, phase.Key)
	fmt.Printf("funding: %.0f-%.0f STX\n", float64(phase.MinFunding)/1_000_000, phase.StX())
	fmt.Printf("gas: %d\n", phase.TotalGas)
	fmt.Println("contracts:")
	for _, name := range phase.Contracts {
		fmt.Println("  -", name)
	}
	fmt.Println(phase.Description)
	return nil
}
