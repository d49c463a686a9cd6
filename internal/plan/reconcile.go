package plan

import (
	"sort"

	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

// Mode classifies how much of the system a deployment run has to cover.
type Mode string

const (
	// ModeFull deploys everything: no prior activity anywhere.
	ModeFull Mode = "full"
	// ModeIncremental deploys on top of local history with a fresh account.
	ModeIncremental Mode = "incremental"
	// ModeUpgrade deploys against an account that has already transacted.
	ModeUpgrade Mode = "upgrade"
)

// LocalState summarizes on-disk deployment evidence: manifest artifacts
// from prior runs, the contract names the local history store marks
// successful, and whether any history records exist (JSON files or the
// store).
type LocalState struct {
	Artifacts       []manifest.Artifact
	StoreSuccessful []string
	HasHistory      bool
}

// RemoteState summarizes the chain's view of the deployer account.
type RemoteState struct {
	Nonce             uint64
	DeployedContracts []string
}

// DetermineMode picks the deployment mode. Any on-chain activity (nonce
// above zero) means upgrade; otherwise local history means incremental;
// otherwise full.
func DetermineMode(local LocalState, remote RemoteState) Mode {
	if remote.Nonce > 0 {
		return ModeUpgrade
	}
	if local.HasHistory {
		return ModeIncremental
	}
	return ModeFull
}

// SkipSet returns the names considered already deployed: the union of the
// chain's deployed contracts, every contract a local deployment artifact
// marks successful, and the history store's successful names. Records with
// empty names are ignored.
func SkipSet(local LocalState, remote RemoteState) map[string]bool {
	skip := make(map[string]bool)
	for _, name := range remote.DeployedContracts {
		if name != "" {
			skip[name] = true
		}
	}
	for _, artifact := range local.Artifacts {
		for _, record := range artifact.Successful {
			if record.Name != "" {
				skip[record.Name] = true
			}
		}
	}
	for _, name := range local.StoreSuccessful {
		if name != "" {
			skip[name] = true
		}
	}
	return skip
}

// Build reconciles discovered contracts against local and remote state and
// produces a deployment plan.
//
// The skip set is subtracted from ToDeploy under every mode, but the
// ordered contract list is filtered by it only under upgrade mode: full
// and incremental runs keep already-deployed contracts in the ordering so
// the operator sees the whole system layout. That asymmetry is deliberate
// and long-standing; tooling downstream keys off ToDeploy, not the
// ordering, for what actually gets submitted.
func Build(discovered []manifest.Descriptor, local LocalState, remote RemoteState) Plan {
	mode := DetermineMode(local, remote)
	skip := SkipSet(local, remote)

	toDeploy := make([]string, 0, len(discovered))
	for _, d := range discovered {
		if d.Name == "" || skip[d.Name] {
			continue
		}
		toDeploy = append(toDeploy, d.Name)
	}
	sort.Strings(toDeploy)

	toSkip := make([]string, 0, len(skip))
	for name := range skip {
		toSkip = append(toSkip, name)
	}
	sort.Strings(toSkip)

	contracts := discovered
	if mode == ModeUpgrade {
		filtered := make([]manifest.Descriptor, 0, len(contracts))
		for _, d := range contracts {
			if !skip[d.Name] {
				filtered = append(filtered, d)
			}
		}
		contracts = filtered
	}
	ordered := SortByDependencyOrder(contracts)

	return Plan{
		Mode:             mode,
		OrderedContracts: ordered,
		ToDeploy:         toDeploy,
		ToSkip:           toSkip,
		EstimatedGas:     EstimateGas(ordered),
		EstimatedMinutes: EstimateMinutes(ordered),
	}
}
