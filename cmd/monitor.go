package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch chain state for the deployer account",
	Long: "Polls the Hiro API for account and contract state. One-shot by default;\n" +
		"--follow keeps polling until interrupted and writes a summary on exit.",
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().Bool("follow", false, "keep polling until interrupted")
	monitorCmd.Flags().Duration("interval", monitor.DefaultInterval, "poll interval in follow mode")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.cfg.SystemAddress == "" {
		return fmt.Errorf("SYSTEM_ADDRESS is required for monitoring")
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	m := monitor.New(s.client(), s.cfg.SystemAddress, interval, logging.Sub(s.log, "monitor"))

	if follow, _ := cmd.Flags().GetBool("follow"); follow {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err := m.Run(ctx, s.root)
		if ctx.Err() != nil {
			return nil // clean shutdown via signal
		}
		return err
	}

	snap := m.Poll(cmd.Context())
	printSnapshot(snap)
	if !snap.Status.Online {
		return fmt.Errorf("api offline: %s", snap.Status.Error)
	}
	return nil
}

func printSnapshot(snap *monitor.Snapshot) {
	if snap.Status.Online {
		fmt.Printf("api: online (block %d, %s)\n", snap.Status.BlockHeight, snap.Status.Version)
	} else {
		fmt.Println("api: offline")
	}
	fmt.Printf("balance: %d µSTX (locked %d), nonce %d\n",
		snap.Account.Balance, snap.Account.Locked, snap.Account.Nonce)
	fmt.Printf("deployed contracts: %d\n", len(snap.Contracts))
	for _, name := range snap.Contracts {
		fmt.Println("  -", name)
	}
	if snap.Err != "" {
		fmt.Println("error:", snap.Err)
	}
}
