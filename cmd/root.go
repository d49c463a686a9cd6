package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/config"
	"github.com/stacksorbit/stacksorbit/internal/hiro"
	"github.com/stacksorbit/stacksorbit/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "stacksorbit",
	Short: "Stacks smart-contract deployment suite",
	Long: "StacksOrbit discovers Clarity contracts in a project, plans their deployment\n" +
		"order, and monitors the deployed system through the Hiro API.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default .env, config.env, or .stacksorbit.env)")
	rootCmd.PersistentFlags().String("network", "", "override the configured network (devnet|testnet|mainnet)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// session bundles what every subcommand needs: the project root, loaded
// config, and a logger.
type session struct {
	root string
	cfg  config.Config
	log  zerolog.Logger
}

// newSession resolves the project root (cwd), loads config honoring the
// persistent flags, and builds the logger. A missing config file is not an
// error here; commands that need credentials validate explicitly.
func newSession(cmd *cobra.Command) (*session, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, cfgErr := config.Load(root, cfgFile)
	if cfgErr != nil && cfgErr != config.ErrNoConfigFile {
		return nil, cfgErr
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	verbose = verbose || cfg.LogLevel == "debug"

	var log zerolog.Logger
	if cfg.SaveLogs {
		logger, closeLog, err := logging.NewWithFile(verbose, filepath.Join(root, logging.DefaultDir))
		if err != nil {
			return nil, err
		}
		cobra.OnFinalize(func() { _ = closeLog() })
		log = logger
	} else {
		log = logging.New(verbose)
	}
	if cfgErr == config.ErrNoConfigFile {
		log.Debug().Msg("no config file found, using environment and defaults")
	}

	if network, _ := cmd.Flags().GetString("network"); network != "" {
		cfg.Network = network
	}

	return &session{root: root, cfg: cfg, log: log}, nil
}

// client builds a Hiro API client from the session config.
func (s *session) client() *hiro.Client {
	opts := []hiro.Option{}
	if s.cfg.HiroAPIKey != "" {
		opts = append(opts, hiro.WithAPIKey(s.cfg.HiroAPIKey))
	}
	if s.cfg.CoreAPIURL != "" {
		opts = append(opts, hiro.WithBaseURL(s.cfg.CoreAPIURL))
	}
	return hiro.NewClient(s.cfg.HiroNetwork(), logging.Sub(s.log, "hiro"), opts...)
}

// requireValidConfig prints every configuration problem and returns an
// error if any exist.
func (s *session) requireValidConfig() error {
	problems := s.cfg.Validate()
	if len(problems) == 0 {
		return nil
	}
	for _, p := range problems {
		fmt.Fprintln(os.Stderr, "config:", p)
	}
	return fmt.Errorf("%d configuration problem(s)", len(problems))
}
