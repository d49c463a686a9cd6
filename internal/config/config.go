// Package config loads deployment configuration from env-format files and
// STACKSORBIT_-prefixed environment variables via viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/stacksorbit/stacksorbit/internal/hiro"
)

// candidateFiles lists the config files probed at the project root, in
// order. The first one that exists wins.
var candidateFiles = []string{".env", "config.env", ".stacksorbit.env"}

// Config holds all runtime configuration for a deployment session. Values
// come from an env-format file, STACKSORBIT_* environment variables, and
// CLI flags.
type Config struct {
	DeployerPrivkey string `mapstructure:"DEPLOYER_PRIVKEY"`
	SystemAddress   string `mapstructure:"SYSTEM_ADDRESS"`
	Network         string `mapstructure:"NETWORK"`
	HiroAPIKey      string `mapstructure:"HIRO_API_KEY"`
	CoreAPIURL      string `mapstructure:"CORE_API_URL"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	SaveLogs        bool   `mapstructure:"SAVE_LOGS"`
}

// ErrNoConfigFile is returned by Load when no candidate file exists.
// Callers that can run from environment variables alone may ignore it.
var ErrNoConfigFile = errors.New("config: no configuration file found")

// Load reads configuration for the project at root. File values are
// overridden by STACKSORBIT_* environment variables. A missing file is
// reported as ErrNoConfigFile alongside an env-only config.
func Load(root, explicitFile string) (Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetEnvPrefix("STACKSORBIT")
	v.AutomaticEnv()

	v.SetDefault("NETWORK", "testnet")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SAVE_LOGS", false)

	path := explicitFile
	if path == "" {
		for _, name := range candidateFiles {
			candidate := filepath.Join(root, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				path = candidate
				break
			}
		}
	}

	var missing error
	if path == "" {
		missing = ErrNoConfigFile
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, missing
}

// HiroNetwork returns the configured network as a typed value.
func (c Config) HiroNetwork() hiro.Network {
	return hiro.Network(c.Network)
}

// Validate checks every field and returns the full list of problems, not
// just the first, so the operator can fix them in one pass.
func (c Config) Validate() []error {
	var problems []error

	switch {
	case c.DeployerPrivkey == "":
		problems = append(problems, errors.New("DEPLOYER_PRIVKEY is required"))
	case len(c.DeployerPrivkey) != 64:
		problems = append(problems, fmt.Errorf("DEPLOYER_PRIVKEY must be 64 hex characters, got %d", len(c.DeployerPrivkey)))
	case !isHex(c.DeployerPrivkey):
		problems = append(problems, errors.New("DEPLOYER_PRIVKEY must be hexadecimal"))
	}

	switch {
	case c.SystemAddress == "":
		problems = append(problems, errors.New("SYSTEM_ADDRESS is required"))
	case !strings.HasPrefix(c.SystemAddress, "S"):
		problems = append(problems, errors.New("SYSTEM_ADDRESS must start with 'S'"))
	case len(c.SystemAddress) != 41:
		problems = append(problems, fmt.Errorf("SYSTEM_ADDRESS must be 41 characters, got %d", len(c.SystemAddress)))
	}

	if !c.HiroNetwork().Valid() {
		problems = append(problems, fmt.Errorf("NETWORK must be devnet, testnet, or mainnet, got %q", c.Network))
	}

	return problems
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// Write renders cfg as an env-format file at path, creating parent
// directories. Used by the setup command.
func Write(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "DEPLOYER_PRIVKEY=%s\n", cfg.DeployerPrivkey)
	fmt.Fprintf(&b, "SYSTEM_ADDRESS=%s\n", cfg.SystemAddress)
	fmt.Fprintf(&b, "NETWORK=%s\n", cfg.Network)
	if cfg.HiroAPIKey != "" {
		fmt.Fprintf(&b, "HIRO_API_KEY=%s\n", cfg.HiroAPIKey)
	}
	if cfg.CoreAPIURL != "" {
		fmt.Fprintf(&b, "CORE_API_URL=%s\n", cfg.CoreAPIURL)
	}
	if cfg.LogLevel != "" {
		fmt.Fprintf(&b, "LOG_LEVEL=%s\n", cfg.LogLevel)
	}
	fmt.Fprintf(&b, "SAVE_LOGS=%t\n", cfg.SaveLogs)

	// Private key material: owner-only permissions.
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
