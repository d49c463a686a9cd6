// Package plan turns discovered contracts into a deployment plan: a
// dependency-flavored ordering, a reconciliation against local and remote
// deployment state, and cost/time estimates.
package plan

import (
	"sort"
	"strings"

	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

// priorityOrder is a flat keyword list approximating Stacks contract
// dependency layers: traits first, then utilities, core, tokens, defi,
// oracles, governance, security, testing. A contract's priority is the
// index of the first keyword contained in its lowercased name; no match
// sorts after everything else. This is a heuristic, not a dependency
// graph.
var priorityOrder = []string{
	// traits and interfaces
	"trait", "traits", "interface", "interfaces",
	"sip-009", "sip-010", "sip-013", "sip-018",

	// utilities and libraries
	"utils", "util", "helper", "library", "lib",
	"math", "string", "encoding", "crypto", "hash",
	"error", "constants", "types",

	// core protocol
	"core", "main", "principal", "registry", "manager",

	// tokens
	"token", "ft", "nft", "fungible", "non-fungible",
	"mint", "burn", "transfer", "balance", "supply",

	// defi
	"dex", "swap", "pool", "liquidity", "amm", "router", "factory",
	"pair", "vault", "staking", "farming", "yield", "rewards",

	// oracles
	"oracle", "price", "feed", "aggregator", "adapter",

	// governance
	"dao", "governance", "proposal", "vote", "voting",
	"timelock", "upgrade", "admin", "owner", "controller",

	// security and monitoring
	"auth", "access", "control", "circuit", "breaker",
	"pause", "pausable", "rate", "limit", "emergency",
	"monitor", "analytics", "metrics", "dashboard",

	// testing and development
	"test", "mock", "fake", "simulator", "debug",
}

// priority returns the deployment priority of a contract name: lower
// deploys earlier.
func priority(name string) int {
	lower := strings.ToLower(name)
	for i, keyword := range priorityOrder {
		if strings.Contains(lower, keyword) {
			return i
		}
	}
	return len(priorityOrder)
}

// SortByDependencyOrder returns descriptors sorted into deployment order.
// Entries with an empty name are dropped. The sort is stable: contracts
// with equal priority keep their input order, so the overall order is only
// as deterministic as the discovery order feeding it.
func SortByDependencyOrder(ds []manifest.Descriptor) []manifest.Descriptor {
	out := make([]manifest.Descriptor, 0, len(ds))
	for _, d := range ds {
		if d.Name == "" {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i].Name) < priority(out[j].Name)
	})
	return out
}
