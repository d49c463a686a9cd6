package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/dashboard"
	"github.com/stacksorbit/stacksorbit/internal/history"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/monitor"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live terminal dashboard of chain state",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.cfg.SystemAddress == "" {
		return fmt.Errorf("SYSTEM_ADDRESS is required for the dashboard")
	}

	m := monitor.New(s.client(), s.cfg.SystemAddress, monitor.DashboardInterval, logging.Sub(s.log, "monitor"))

	// Local history feeds the deployments panel; a broken store just
	// leaves the panel empty.
	store, err := history.Open(cmd.Context(), history.DefaultPath(s.root))
	if err != nil {
		s.log.Warn().Err(err).Msg("history store unavailable")
		store = nil
	} else {
		defer store.Close()
	}

	// The monitor polls in the background; the TUI reads its snapshots on
	// its own tick. Cancelling the context stops the poller and writes the
	// monitoring summary.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go m.Run(ctx, s.root)

	model := dashboard.New(m, category.NewTable(), store, s.cfg.HiroNetwork(), s.cfg.SystemAddress, s.root)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
