package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
	"github.com/stacksorbit/stacksorbit/internal/monitor"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [contract...]",
	Short: "Verify that expected contracts are deployed",
	Long: "Compares the project's contracts (or the named ones) against what the\n" +
		"deployer account actually has on chain. Exits nonzero when any are missing.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.cfg.SystemAddress == "" {
		return fmt.Errorf("SYSTEM_ADDRESS is required for verification")
	}

	expected := args
	if len(expected) == 0 {
		parser := manifest.NewParser(category.NewTable(), logging.Sub(s.log, "discovery"))
		discovered, _ := parser.Discover(s.root)
		for _, d := range discovered {
			expected = append(expected, d.Name)
		}
	}
	if len(expected) == 0 {
		return fmt.Errorf("nothing to verify: no contracts discovered and none named")
	}

	v, err := monitor.Verify(cmd.Context(), s.client(), s.cfg.SystemAddress, expected)
	if err != nil {
		return err
	}

	for _, name := range v.Verified {
		fmt.Println("ok     ", name)
	}
	for _, name := range v.Missing {
		fmt.Println("missing", name)
	}
	for _, name := range v.Extra {
		fmt.Println("extra  ", name)
	}
	fmt.Printf("\nexpected %d, verified %d, missing %d, extra %d\n",
		len(v.Expected), len(v.Verified), len(v.Missing), len(v.Extra))

	if !v.Success {
		return fmt.Errorf("%d contract(s) missing on chain", len(v.Missing))
	}
	return nil
}
