// Package category assigns a coarse semantic bucket to a contract based on
// keyword-substring matching against its name. The table is an ordered
// association list, not a map: a name matching keywords from several
// categories resolves to whichever category is declared first, and that
// tie-break is part of the contract.
package category

import "strings"

// Category is one of a fixed closed set of contract buckets.
type Category string

// Base categories. General is the fallback when no keyword matches.
const (
	Traits    Category = "traits"
	Tokens    Category = "tokens"
	DeFi      Category = "defi"
	Oracle    Category = "oracle"
	DAO       Category = "dao"
	Security  Category = "security"
	Utilities Category = "utilities"
	Testing   Category = "testing"
	General   Category = "general"
)

// entry pairs a category label with its lowercase keyword set. Declaration
// order within the table decides ties.
type entry struct {
	label    Category
	keywords []string
}

// baseTable lists the generic Stacks contract patterns. Order is
// behaviorally load-bearing: first match wins.
var baseTable = []entry{
	{Traits, []string{
		"trait", "traits", "interfaces", "interface",
		"sip-009", "sip-010", "sip-013", "sip-018",
	}},
	{Tokens, []string{
		"token", "ft", "nft", "fungible", "non-fungible",
		"mint", "burn", "transfer", "balance", "supply",
	}},
	{DeFi, []string{
		"dex", "swap", "pool", "liquidity", "amm",
		"router", "factory", "pair", "vault", "staking",
		"farming", "yield", "rewards", "governance",
	}},
	{Oracle, []string{
		"oracle", "price", "feed", "aggregator", "adapter",
		"btc", "usd", "eth", "chainlink", "pyth",
	}},
	{DAO, []string{
		"dao", "governance", "proposal", "vote", "voting",
		"timelock", "upgrade", "admin", "owner", "controller",
	}},
	{Security, []string{
		"auth", "access", "control", "circuit", "breaker",
		"pause", "pausable", "rate", "limit", "emergency",
	}},
	{Utilities, []string{
		"utils", "util", "helper", "library", "lib",
		"math", "string", "encoding", "crypto", "hash",
	}},
	{Testing, []string{
		"test", "mock", "fake", "simulator", "debug",
	}},
}

// extendedTable holds the Conxian-specific subcategories appended after the
// base table when extended mode is enabled. Base categories still win ties
// because they are checked first.
var extendedTable = []entry{
	{"conxian_base", []string{
		"all-traits", "utils-encoding", "utils-utils", "lib-error-codes",
		"math-lib-advanced", "fixed-point-math", "standard-constants",
	}},
	{"conxian_tokens", []string{
		"cxd-token", "cxlp-token", "cxvg-token", "cxtr-token", "cxs-token",
		"governance-token", "token-system-coordinator", "token-emission-controller",
	}},
	{"conxian_dex", []string{
		"dex-factory", "dex-factory-v2", "dex-router", "dex-pool", "dex-vault",
		"dex-multi-hop-router-v3", "fee-manager", "liquidity-manager",
		"stable-swap-pool", "weighted-swap-pool", "mev-protector",
	}},
	{"conxian_dimensional", []string{
		"dim-registry", "dim-metrics", "dim-graph", "dim-oracle-automation",
		"dim-revenue-adapter", "dim-yield-stake", "position-nft",
		"dimensional-core", "dimensional-advanced-router-dijkstra",
		"concentrated-liquidity-pool", "concentrated-liquidity-pool-v2",
	}},
	{"conxian_governance", []string{
		"governance-token", "proposal-engine", "timelock-controller",
		"upgrade-controller", "emergency-governance", "governance-signature-verifier",
	}},
	{"conxian_oracle", []string{
		"oracle", "oracle-aggregator", "oracle-aggregator-v2", "btc-adapter",
		"external-oracle-adapter", "oracle-dimensional-oracle",
	}},
	{"conxian_security", []string{
		"circuit-breaker", "pausable", "access-control-interface",
		"rate-limiter", "mev-protector", "monitoring-dashboard",
	}},
	{"conxian_monitoring", []string{
		"analytics-aggregator", "monitoring-dashboard", "finance-metrics",
		"performance-optimizer", "price-stability-monitor", "system-monitor",
		"real-time-monitoring-dashboard", "protocol-invariant-monitor",
	}},
	{"conxian_chainhooks", []string{
		"batch-processor", "keeper-coordinator", "automation-batch-processor",
		"transaction-batch-processor", "predictive-scaling-system",
	}},
	{"conxian_enterprise", []string{
		"enterprise-api", "enterprise-loan-manager", "compliance-hooks",
		"budget-manager", "enterprise-compliance-hooks",
	}},
	{"conxian_lending", []string{
		"comprehensive-lending-system", "enterprise-loan-manager",
		"sbtc-lending-system", "sbtc-lending-integration",
		"dimensional-vault", "sbtc-vault", "vault", "liquidation-manager",
	}},
}

// Table categorizes contract names. The zero value is not usable; construct
// with NewTable or NewExtendedTable. Categorize is a pure function of the
// name and the table, so results may be memoized freely.
type Table struct {
	entries []entry
}

// NewTable returns the generic Stacks category table.
func NewTable() *Table {
	return &Table{entries: baseTable}
}

// NewExtendedTable returns the generic table with the Conxian subcategories
// appended.
func NewExtendedTable() *Table {
	entries := make([]entry, 0, len(baseTable)+len(extendedTable))
	entries = append(entries, baseTable...)
	entries = append(entries, extendedTable...)
	return &Table{entries: entries}
}

// Categorize returns the first category whose any keyword is a substring of
// the lowercased name, or General when nothing matches.
func (t *Table) Categorize(name string) Category {
	lower := strings.ToLower(name)
	for _, e := range t.entries {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				return e.label
			}
		}
	}
	return General
}

// Labels returns the category labels in table order. Useful for grouping
// output by category with a stable ordering.
func (t *Table) Labels() []Category {
	labels := make([]Category, 0, len(t.entries)+1)
	for _, e := range t.entries {
		labels = append(labels, e.label)
	}
	return append(labels, General)
}
