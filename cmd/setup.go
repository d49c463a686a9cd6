package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a deployment configuration file",
	Long: "Writes an env-format configuration file from flags. Values are validated\n" +
		"before writing; the file is created with owner-only permissions.",
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().String("privkey", "", "deployer private key (64 hex chars)")
	setupCmd.Flags().String("address", "", "deployer Stacks address")
	setupCmd.Flags().String("net", "testnet", "target network (devnet|testnet|mainnet)")
	setupCmd.Flags().String("api-key", "", "Hiro API key")
	setupCmd.Flags().String("api-url", "", "custom core API URL")
	setupCmd.Flags().String("out", ".env", "output file (relative to the project root)")
	setupCmd.Flags().Bool("force", false, "overwrite an existing file")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	privkey, _ := cmd.Flags().GetString("privkey")
	address, _ := cmd.Flags().GetString("address")
	network, _ := cmd.Flags().GetString("net")
	apiKey, _ := cmd.Flags().GetString("api-key")
	apiURL, _ := cmd.Flags().GetString("api-url")

	cfg := config.Config{
		DeployerPrivkey: privkey,
		SystemAddress:   address,
		Network:         network,
		HiroAPIKey:      apiKey,
		CoreAPIURL:      apiURL,
		LogLevel:        "info",
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(cmd.ErrOrStderr(), "config:", p)
		}
		return fmt.Errorf("%d configuration problem(s)", len(problems))
	}

	out, _ := cmd.Flags().GetString("out")
	path := out
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, out)
	}
	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
	}

	if err := config.Write(cfg, path); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}
