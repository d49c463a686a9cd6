package plan

import (
	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

// EstimateGas returns a rough relative gas cost for deploying the
// contracts: one unit per contract, scaled up for categories that tend to
// produce heavier contracts.
func EstimateGas(ds []manifest.Descriptor) float64 {
	var total float64
	for _, d := range ds {
		gas := 1.0
		switch d.Category {
		case category.DeFi, category.DAO:
			gas *= 1.8
		case category.Tokens, category.Oracle:
			gas *= 1.3
		case category.Security, category.Utilities:
			gas *= 1.1
		}
		total += gas
	}
	return total
}

// EstimateMinutes returns the expected wall-clock deployment time:
// two minutes per contract including confirmations, an extra minute per
// defi or dao contract, never below five minutes.
func EstimateMinutes(ds []manifest.Descriptor) int {
	total := len(ds) * 2
	for _, d := range ds {
		if d.Category == category.DeFi || d.Category == category.DAO {
			total++
		}
	}
	if total < 5 {
		return 5
	}
	return total
}

// LaunchPhase is one funding band of a staged system launch. Funding
// amounts are micro-STX.
type LaunchPhase struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	MinFunding  uint64   `json:"min_funding"`
	MaxFunding  uint64   `json:"max_funding"`
	Contracts   []string `json:"contracts"`
	TotalGas    uint64   `json:"total_gas"`
	Description string   `json:"description"`
}

const microSTX = 1_000_000

// StX returns the phase's maximum funding in whole STX.
func (p LaunchPhase) StX() float64 {
	return float64(p.MaxFunding) / microSTX
}

// LaunchPhases lists the staged funding bands for a full system launch,
// cheapest first. The bands and their contract groupings are fixed policy.
func LaunchPhases() []LaunchPhase {
	return []LaunchPhase{
		{
			Key:         "bootstrap",
			Name:        "Community Bootstrap",
			MinFunding:  100 * microSTX,
			MaxFunding:  500 * microSTX,
			Contracts:   []string{"all-traits", "utils-encoding", "utils-utils"},
			TotalGas:    2_000_000,
			Description: "Essential infrastructure - deployable by community",
		},
		{
			Key:         "micro_core",
			Name:        "Micro Core",
			MinFunding:  500 * microSTX,
			MaxFunding:  1_000 * microSTX,
			Contracts:   []string{"cxd-price-initializer", "token-system-coordinator"},
			TotalGas:    3_000_000,
			Description: "Core utilities and price management",
		},
		{
			Key:         "token_system",
			Name:        "Token System",
			MinFunding:  1_000 * microSTX,
			MaxFunding:  2_500 * microSTX,
			Contracts:   []string{"cxd-token", "token-emission-controller"},
			TotalGas:    5_000_000,
			Description: "Basic token functionality and emission control",
		},
		{
			Key:         "dex_core",
			Name:        "DEX Core",
			MinFunding:  2_500 * microSTX,
			MaxFunding:  5_000 * microSTX,
			Contracts:   []string{"oracle", "dex-factory", "budget-manager"},
			TotalGas:    10_000_000,
			Description: "DEX infrastructure and basic trading",
		},
		{
			Key:         "liquidity",
			Name:        "Liquidity & Trading",
			MinFunding:  5_000 * microSTX,
			MaxFunding:  10_000 * microSTX,
			Contracts:   []string{"dex-router", "dex-pool", "oracle-aggregator"},
			TotalGas:    15_000_000,
			Description: "Advanced trading and liquidity provision",
		},
		{
			Key:         "governance",
			Name:        "Governance",
			MinFunding:  10_000 * microSTX,
			MaxFunding:  25_000 * microSTX,
			Contracts:   []string{"governance-token", "proposal-engine", "timelock-controller"},
			TotalGas:    8_000_000,
			Description: "Community governance and decision making",
		},
		{
			Key:         "autonomous",
			Name:        "Fully Autonomous",
			MinFunding:  25_000 * microSTX,
			MaxFunding:  50_000 * microSTX,
			Contracts:   []string{"self-launch-coordinator", "predictive-scaling-system", "automation-keeper-coordinator"},
			TotalGas:    5_000_000,
			Description: "Self-sustaining autonomous operation",
		},
	}
}

// LaunchCost aggregates the phases into a full-launch cost summary.
type LaunchCost struct {
	TotalFundingRequired uint64        `json:"total_funding_required"`
	TotalGasCost         uint64        `json:"total_gas_cost"`
	EstimatedSTXCost     float64       `json:"estimated_stx_cost"`
	Phases               []LaunchPhase `json:"phases"`
}

// EstimateLaunchCost sums every phase's maximum funding and gas into a
// worst-case full-launch figure.
func EstimateLaunchCost() LaunchCost {
	phases := LaunchPhases()
	var cost LaunchCost
	cost.Phases = phases
	for _, phase := range phases {
		cost.TotalFundingRequired += phase.MaxFunding
		cost.TotalGasCost += phase.TotalGas
	}
	cost.EstimatedSTXCost = float64(cost.TotalFundingRequired) / microSTX
	return cost
}

// PhaseByKey looks up a launch phase by its key.
func PhaseByKey(key string) (LaunchPhase, bool) {
	for _, phase := range LaunchPhases() {
		if phase.Key == key {
			return phase, true
		}
	}
	return LaunchPhase{}, false
}
