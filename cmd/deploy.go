package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/history"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
	"github.com/stacksorbit/stacksorbit/internal/plan"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the planned contracts",
	Long: "Computes the deployment plan and submits each contract in order.\n" +
		"Transaction signing is delegated to the configured deployer tooling;\n" +
		"this command sequences, records, and reports.",
	RunE: runDeploy,
}

func init() {
	deployCmd.Flags().Bool("dry-run", false, "print the plan without submitting anything")
	deployCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	deployCmd.Flags().Bool("from-plan", false, "use the plan snapshot written by detect instead of replanning")
	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := s.requireValidConfig(); err != nil {
		return err
	}

	var p plan.Plan
	if fromPlan, _ := cmd.Flags().GetBool("from-plan"); fromPlan {
		p, err = plan.Load(s.root)
		if err != nil {
			return fmt.Errorf("no usable plan snapshot, run detect first: %w", err)
		}
	} else {
		parser := manifest.NewParser(category.NewTable(), logging.Sub(s.log, "discovery"))
		discovered, _ := parser.Discover(s.root)
		if len(discovered) == 0 {
			return fmt.Errorf("no contracts discovered under %s", s.root)
		}
		p = plan.Build(discovered, localState(cmd, s), remoteState(cmd, s))
	}

	deploySet := make(map[string]bool, len(p.ToDeploy))
	for _, name := range p.ToDeploy {
		deploySet[name] = true
	}

	fmt.Printf("mode %s: %d contract(s) to deploy, %d skipped\n", p.Mode, len(p.ToDeploy), len(p.ToSkip))
	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		for i, d := range p.OrderedContracts {
			marker := "skip"
			if deploySet[d.Name] {
				marker = "deploy"
			}
			fmt.Printf("  %2d. %-30s %s\n", i+1, d.Name, marker)
		}
		return nil
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Print("proceed? [y/N] ")
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("aborted")
			return nil
		}
	}

	store, err := history.Open(cmd.Context(), history.DefaultPath(s.root))
	if err != nil {
		return err
	}
	defer store.Close()

	var deployed, failed int
	for _, d := range p.OrderedContracts {
		if !deploySet[d.Name] {
			continue
		}
		txID, err := submitContract(s, d)
		if err != nil {
			failed++
			s.log.Error().Err(err).Str("contract", d.Name).Msg("deployment failed")
			if recErr := store.Record(cmd.Context(), d.Name, "", s.cfg.Network, history.StatusFailed); recErr != nil {
				s.log.Warn().Err(recErr).Msg("recording failure")
			}
			continue
		}
		deployed++
		s.log.Info().Str("contract", d.Name).Str("tx_id", txID).Msg("deployment submitted")
		if err := store.Record(cmd.Context(), d.Name, txID, s.cfg.Network, history.StatusSuccess); err != nil {
			s.log.Warn().Err(err).Msg("recording deployment")
		}
	}

	fmt.Printf("\ndeployed %d, failed %d, skipped %d\n", deployed, failed, len(p.ToSkip))
	if failed > 0 {
		return fmt.Errorf("%d contract(s) failed to deploy", failed)
	}
	return nil
}

// submitContract hands one contract to the deployment backend. The backend
// integration carries the signing key; this build simulates submission and
// returns a deterministic placeholder transaction id so the rest of the
// pipeline (history, verification, monitoring) can be exercised end to
// end on devnet.
func submitContract(s *session, d manifest.Descriptor) (string, error) {
	if d.ContentHash == "unknown" {
		return "", fmt.Errorf("unreadable contract source: %s", d.RelPath)
	}
	return "0x" + d.ContentHash, nil
}
