package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/history"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
	"github.com/stacksorbit/stacksorbit/internal/plan"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Discover contracts and compute a deployment plan",
	Long: "Scans the project for Clarity contracts, reconciles them against local and\n" +
		"on-chain deployment state, and writes a plan snapshot under .stacksorbit/.",
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().Bool("extended", false, "use the extended category table")
	detectCmd.Flags().Bool("offline", false, "skip the chain-state query")
	detectCmd.Flags().Bool("watch", false, "re-run detection when contract sources change")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	table := category.NewTable()
	if extended, _ := cmd.Flags().GetBool("extended"); extended {
		table = category.NewExtendedTable()
	}

	parser := manifest.NewParser(table, logging.Sub(s.log, "discovery"))
	cache := manifest.NewCache()

	detectOnce := func() error {
		discovered, stats := cache.Discover(parser, s.root)
		s.log.Info().Int("contracts", len(discovered)).Int("duplicates_dropped", stats.Duplicates).Msg("discovery complete")

		local := localState(cmd, s)
		remote := remoteState(cmd, s)

		p := plan.Build(discovered, local, remote)
		path, err := p.Save(s.root)
		if err != nil {
			return err
		}

		printPlan(p, stats)
		printRecommendations(p, s)
		fmt.Println("\nplan snapshot:", path)
		return nil
	}

	if err := detectOnce(); err != nil {
		return err
	}
	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}
	return watchDetect(cmd, s, cache, detectOnce)
}

// watchDetect re-runs detection whenever the watcher invalidates the
// discovery cache, until interrupted.
func watchDetect(cmd *cobra.Command, s *session, cache *manifest.Cache, detectOnce func() error) error {
	w, err := manifest.WatchDirectory(cache, s.root, logging.Sub(s.log, "watcher"))
	if err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("\nwatching for changes (ctrl-c to stop)")
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, _, ok := cache.Get(s.root); ok {
				continue // cache still warm, nothing changed
			}
			fmt.Println("\nchange detected, re-running detection")
			if err := detectOnce(); err != nil {
				s.log.Error().Err(err).Msg("detection failed")
			}
		}
	}
}

// localState gathers on-disk deployment evidence: manifest artifacts plus
// the sqlite history store. Store errors degrade to "no history" rather
// than failing detection.
func localState(cmd *cobra.Command, s *session) plan.LocalState {
	local := plan.LocalState{
		Artifacts: manifest.FindArtifacts(s.root, logging.Sub(s.log, "artifacts")),
	}
	if len(manifest.LoadHistory(s.root, s.log)) > 0 {
		local.HasHistory = true
	}

	store, err := history.Open(cmd.Context(), history.DefaultPath(s.root))
	if err != nil {
		s.log.Debug().Err(err).Msg("history store unavailable")
		return local
	}
	defer store.Close()
	if has, err := store.HasRecords(cmd.Context()); err == nil && has {
		local.HasHistory = true
	}
	if names, err := store.Successful(cmd.Context()); err == nil {
		local.StoreSuccessful = names
		if len(names) > 0 {
			s.log.Info().Strs("contracts", names).Msg("history store marks contracts deployed")
		}
	}
	return local
}

// remoteState queries the chain for the deployer account. Offline mode, a
// missing address, or an unreachable API all degrade to an empty remote
// view (full-deployment assumption).
func remoteState(cmd *cobra.Command, s *session) plan.RemoteState {
	if offline, _ := cmd.Flags().GetBool("offline"); offline {
		return plan.RemoteState{}
	}
	if s.cfg.SystemAddress == "" {
		s.log.Debug().Msg("no SYSTEM_ADDRESS configured, skipping chain query")
		return plan.RemoteState{}
	}

	client := s.client()
	account, err := client.GetAccount(cmd.Context(), s.cfg.SystemAddress)
	if err != nil {
		s.log.Warn().Err(err).Msg("chain state unavailable, planning from local state only")
		return plan.RemoteState{}
	}
	contracts, err := client.DeployedContracts(cmd.Context(), s.cfg.SystemAddress)
	if err != nil {
		s.log.Warn().Err(err).Msg("deployed contract list unavailable")
	}
	return plan.RemoteState{Nonce: account.Nonce, DeployedContracts: contracts}
}

func printPlan(p plan.Plan, stats manifest.Stats) {
	fmt.Printf("deployment mode: %s\n", p.Mode)
	fmt.Printf("contracts to deploy: %d, to skip: %d\n", len(p.ToDeploy), len(p.ToSkip))
	fmt.Printf("estimated gas: %.1f units, time: ~%d min\n", p.EstimatedGas, p.EstimatedMinutes)

	fmt.Println("\ndeployment order:")
	for i, d := range p.OrderedContracts {
		fmt.Printf("  %2d. %-30s %s (%s)\n", i+1, d.Name, d.Category, d.Source)
	}
	if len(stats.ManifestRefs) > 0 {
		fmt.Printf("\nprior deployment artifacts reference %d contract(s)\n", len(stats.ManifestRefs))
	}
}

func printRecommendations(p plan.Plan, s *session) {
	fmt.Println("\nrecommendations:")
	switch p.Mode {
	case plan.ModeFull:
		fmt.Println("  - fresh deployment: fund the deployer account before running deploy")
	case plan.ModeIncremental:
		fmt.Println("  - incremental deployment: only undeployed contracts will be submitted")
	case plan.ModeUpgrade:
		fmt.Println("  - upgrade deployment: verify already-deployed contracts before overwriting")
	}
	if len(s.cfg.Validate()) > 0 {
		fmt.Println("  - configuration is incomplete; run doctor for details")
	}
}
