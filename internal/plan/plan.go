package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

// Plan is a reconciled deployment plan: what to deploy, in what order,
// what to skip, and what it will roughly cost.
type Plan struct {
	Mode             Mode                  `json:"deployment_mode"`
	OrderedContracts []manifest.Descriptor `json:"ordered_contracts"`
	ToDeploy         []string              `json:"contracts_to_deploy"`
	ToSkip           []string              `json:"contracts_to_skip"`
	EstimatedGas     float64               `json:"estimated_gas"`
	EstimatedMinutes int                   `json:"estimated_time_minutes"`
	GeneratedAt      time.Time             `json:"generated_at,omitempty"`
}

// OrderedNames returns just the contract names in deployment order.
func (p Plan) OrderedNames() []string {
	names := make([]string, len(p.OrderedContracts))
	for i, d := range p.OrderedContracts {
		names[i] = d.Name
	}
	return names
}

// StateDir is the directory plan snapshots are written under, relative to
// the project root.
const StateDir = ".stacksorbit"

// Save writes the plan as a JSON snapshot under root/.stacksorbit and
// returns the file path. The directory is created if needed.
func (p Plan) Save(root string) (string, error) {
	dir := filepath.Join(root, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("plan: create state dir: %w", err)
	}
	snapshot := p
	if snapshot.GeneratedAt.IsZero() {
		snapshot.GeneratedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("plan: encode snapshot: %w", err)
	}
	path := filepath.Join(dir, "deployment_plan.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("plan: write snapshot: %w", err)
	}
	return path, nil
}

// Load reads a plan snapshot previously written by Save.
func Load(root string) (Plan, error) {
	path := filepath.Join(root, StateDir, "deployment_plan.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("plan: read snapshot: %w", err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("plan: decode snapshot: %w", err)
	}
	return p, nil
}
