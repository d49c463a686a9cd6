package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/logging"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration, connectivity, and discovery",
	Long: "Runs every preflight check a deployment depends on and writes the full\n" +
		"report as JSON under .stacksorbit/ for support and automation.",
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// checkResult is one diagnosis entry.
type checkResult struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var checks []checkResult
	record := func(name string, ok bool, detail string) {
		checks = append(checks, checkResult{Name: name, OK: ok, Detail: detail})
		marker := "ok  "
		if !ok {
			marker = "FAIL"
		}
		if detail != "" {
			fmt.Printf("%s %s: %s\n", marker, name, detail)
		} else {
			fmt.Printf("%s %s\n", marker, name)
		}
	}

	// Configuration.
	problems := s.cfg.Validate()
	if len(problems) == 0 {
		record("configuration", true, "")
	} else {
		for _, p := range problems {
			record("configuration", false, p.Error())
		}
	}

	// Connectivity.
	status := s.client().Status(cmd.Context())
	if status.Online {
		record("hiro api", true, fmt.Sprintf("block %d, %s", status.BlockHeight, status.Version))
	} else {
		record("hiro api", false, status.Error)
	}

	// Account, when an address is configured.
	if s.cfg.SystemAddress != "" && status.Online {
		account, err := s.client().GetAccount(cmd.Context(), s.cfg.SystemAddress)
		switch {
		case err != nil:
			record("deployer account", false, err.Error())
		case account.Available() == 0:
			record("deployer account", false, "zero available balance")
		default:
			record("deployer account", true, fmt.Sprintf("%d µSTX available, nonce %d", account.Available(), account.Nonce))
		}
	}

	// Discovery.
	parser := manifest.NewParser(category.NewTable(), logging.Sub(s.log, "discovery"))
	discovered, stats := parser.Discover(s.root)
	if len(discovered) > 0 {
		record("contract discovery", true, fmt.Sprintf("%d contract(s)", len(discovered)))
	} else {
		record("contract discovery", false, "no contracts found")
	}
	if _, err := os.Stat(filepath.Join(s.root, manifest.ManifestFile)); err != nil {
		record("project manifest", false, manifest.ManifestFile+" not found")
	} else if stats.ByStrategy[manifest.SourceManifest] == 0 && len(discovered) > 0 {
		record("project manifest", false, "present but contributed no contracts")
	} else {
		record("project manifest", true, "")
	}

	// Report.
	report := struct {
		Timestamp time.Time     `json:"timestamp"`
		Network   string        `json:"network"`
		Checks    []checkResult `json:"checks"`
	}{time.Now().UTC(), s.cfg.Network, checks}

	dir := filepath.Join(s.root, ".stacksorbit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("doctor: create state dir: %w", err)
	}
	data, _ := json.MarshalIndent(report, "", "  ")
	path := filepath.Join(dir, "doctor_report.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("doctor: write report: %w", err)
	}
	fmt.Println("\nreport:", path)

	for _, c := range checks {
		if !c.OK {
			return fmt.Errorf("diagnosis found problems")
		}
	}
	return nil
}
