package plan

import (
	"reflect"
	"testing"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/manifest"
)

func desc(name string, cat category.Category) manifest.Descriptor {
	return manifest.Descriptor{Name: name, Category: cat}
}

func orderedNames(ds []manifest.Descriptor) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}

func TestSortByDependencyOrder(t *testing.T) {
	t.Parallel()
	in := []manifest.Descriptor{
		desc("zzz-unrelated", category.General),
		desc("oracle-aggregator", category.Oracle),
		desc("dex-factory", category.DeFi),
		desc("cxd-token", category.Tokens),
		desc("all-traits", category.Traits),
	}

	got := orderedNames(SortByDependencyOrder(in))
	want := []string{"all-traits", "cxd-token", "dex-factory", "oracle-aggregator", "zzz-unrelated"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortDropsEmptyNames(t *testing.T) {
	t.Parallel()
	in := []manifest.Descriptor{
		desc("", category.General),
		desc("utils", category.Utilities),
	}
	got := SortByDependencyOrder(in)
	if len(got) != 1 || got[0].Name != "utils" {
		t.Errorf("got %v, want just utils", orderedNames(got))
	}
}

func TestSortIsStableForEqualPriority(t *testing.T) {
	t.Parallel()
	// Neither name matches any keyword: both sort to the same priority and
	// must keep their input order.
	in := []manifest.Descriptor{
		desc("bravo", category.General),
		desc("alpha", category.General),
	}
	got := orderedNames(SortByDependencyOrder(in))
	want := []string{"bravo", "alpha"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want input order preserved %v", got, want)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	in := []manifest.Descriptor{
		desc("oracle", category.Oracle),
		desc("all-traits", category.Traits),
	}
	SortByDependencyOrder(in)
	if in[0].Name != "oracle" {
		t.Error("input slice must not be reordered in place")
	}
}

func TestDetermineMode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		local  LocalState
		remote RemoteState
		want   Mode
	}{
		{"fresh everything", LocalState{}, RemoteState{}, ModeFull},
		{"local history only", LocalState{HasHistory: true}, RemoteState{}, ModeIncremental},
		{"nonzero nonce", LocalState{}, RemoteState{Nonce: 3}, ModeUpgrade},
		{"nonce beats history", LocalState{HasHistory: true}, RemoteState{Nonce: 1}, ModeUpgrade},
	}
	for _, tc := range cases {
		if got := DetermineMode(tc.local, tc.remote); got != tc.want {
			t.Errorf("%s: mode = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSkipSetIsUnionOfRemoteAndArtifacts(t *testing.T) {
	t.Parallel()
	local := LocalState{
		Artifacts: []manifest.Artifact{
			{Successful: []manifest.ArtifactRecord{{Name: "cxd-token", TxID: "0x1"}, {Name: ""}}},
		},
	}
	remote := RemoteState{DeployedContracts: []string{"all-traits"}}

	skip := SkipSet(local, remote)
	if len(skip) != 2 || !skip["all-traits"] || !skip["cxd-token"] {
		t.Errorf("skip set = %v, want {all-traits, cxd-token}", skip)
	}
}

func TestSkipSetIncludesStoreSuccesses(t *testing.T) {
	t.Parallel()
	local := LocalState{
		StoreSuccessful: []string{"dex-factory", ""},
	}
	remote := RemoteState{DeployedContracts: []string{"all-traits"}}

	skip := SkipSet(local, remote)
	if len(skip) != 2 || !skip["all-traits"] || !skip["dex-factory"] {
		t.Errorf("skip set = %v, want {all-traits, dex-factory}", skip)
	}

	p := Build([]manifest.Descriptor{
		desc("dex-factory", category.DeFi),
		desc("oracle-feed", category.Oracle),
	}, local, remote)
	if !reflect.DeepEqual(p.ToDeploy, []string{"oracle-feed"}) {
		t.Errorf("to deploy = %v, want store successes excluded", p.ToDeploy)
	}
}

func TestBuildFullMode(t *testing.T) {
	t.Parallel()
	discovered := []manifest.Descriptor{
		desc("all-traits", category.Traits),
		desc("cxd-token", category.Tokens),
	}

	p := Build(discovered, LocalState{}, RemoteState{})
	if p.Mode != ModeFull {
		t.Errorf("mode = %q, want full", p.Mode)
	}
	if !reflect.DeepEqual(p.ToDeploy, []string{"all-traits", "cxd-token"}) {
		t.Errorf("to deploy = %v", p.ToDeploy)
	}
	if len(p.ToSkip) != 0 {
		t.Errorf("to skip = %v, want empty", p.ToSkip)
	}
	if p.EstimatedMinutes != 5 {
		t.Errorf("minutes = %d, want floor of 5", p.EstimatedMinutes)
	}
}

func TestBuildUpgradeFiltersOrderingButIncrementalDoesNot(t *testing.T) {
	t.Parallel()
	discovered := []manifest.Descriptor{
		desc("all-traits", category.Traits),
		desc("cxd-token", category.Tokens),
		desc("dex-factory", category.DeFi),
	}
	local := LocalState{
		HasHistory: true,
		Artifacts: []manifest.Artifact{
			{Successful: []manifest.ArtifactRecord{{Name: "all-traits", TxID: "0x1"}}},
		},
	}

	// Upgrade mode: the skip set is removed from the ordering too.
	upgrade := Build(discovered, local, RemoteState{Nonce: 5})
	if upgrade.Mode != ModeUpgrade {
		t.Fatalf("mode = %q, want upgrade", upgrade.Mode)
	}
	got := upgrade.OrderedNames()
	if !reflect.DeepEqual(got, []string{"cxd-token", "dex-factory"}) {
		t.Errorf("upgrade ordering = %v, want skip set filtered out", got)
	}

	// Incremental mode: skipped contracts stay visible in the ordering but
	// are still excluded from ToDeploy.
	incremental := Build(discovered, local, RemoteState{})
	if incremental.Mode != ModeIncremental {
		t.Fatalf("mode = %q, want incremental", incremental.Mode)
	}
	got = incremental.OrderedNames()
	if !reflect.DeepEqual(got, []string{"all-traits", "cxd-token", "dex-factory"}) {
		t.Errorf("incremental ordering = %v, want full ordering", got)
	}
	if !reflect.DeepEqual(incremental.ToDeploy, []string{"cxd-token", "dex-factory"}) {
		t.Errorf("incremental to deploy = %v", incremental.ToDeploy)
	}
	if !reflect.DeepEqual(incremental.ToSkip, []string{"all-traits"}) {
		t.Errorf("incremental to skip = %v", incremental.ToSkip)
	}
}

func TestBuildCoversEveryDiscoveredContract(t *testing.T) {
	t.Parallel()
	discovered := []manifest.Descriptor{
		desc("a-token", category.Tokens),
		desc("b-vault", category.DeFi),
		desc("c-oracle", category.Oracle),
	}
	local := LocalState{Artifacts: []manifest.Artifact{
		{Successful: []manifest.ArtifactRecord{{Name: "b-vault"}}},
	}}

	p := Build(discovered, local, RemoteState{DeployedContracts: []string{"c-oracle"}, Nonce: 1})

	covered := make(map[string]bool)
	for _, name := range p.ToDeploy {
		covered[name] = true
	}
	for _, name := range p.ToSkip {
		covered[name] = true
	}
	for _, d := range discovered {
		if !covered[d.Name] {
			t.Errorf("%s is in neither ToDeploy nor ToSkip", d.Name)
		}
	}
}

func TestEstimateGasMultipliers(t *testing.T) {
	t.Parallel()
	ds := []manifest.Descriptor{
		desc("dex-router", category.DeFi),
		desc("dao-voting", category.DAO),
		desc("cxd-token", category.Tokens),
		desc("price-feed", category.Oracle),
		desc("circuit-breaker", category.Security),
		desc("utils", category.Utilities),
		desc("plain", category.General),
	}
	got := EstimateGas(ds)
	// defi/dao 1.8, tokens/oracle 1.3, security/utilities 1.1, general 1.0.
	want := 1.8 + 1.8 + 1.3 + 1.3 + 1.1 + 1.1 + 1.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("gas = %v, want %v", got, want)
	}
}

func TestEstimateMinutes(t *testing.T) {
	t.Parallel()
	ds := []manifest.Descriptor{
		desc("dex-router", category.DeFi),
		desc("cxd-token", category.Tokens),
		desc("utils", category.Utilities),
	}
	// 3 contracts * 2 min + 1 complex = 7.
	if got := EstimateMinutes(ds); got != 7 {
		t.Errorf("minutes = %d, want 7", got)
	}
	if got := EstimateMinutes(nil); got != 5 {
		t.Errorf("empty estimate = %d, want floor of 5", got)
	}
}

func TestLaunchCostTotals(t *testing.T) {
	t.Parallel()
	cost := EstimateLaunchCost()
	if len(cost.Phases) != 7 {
		t.Fatalf("phases = %d, want 7", len(cost.Phases))
	}
	// 500 + 1000 + 2500 + 5000 + 10000 + 25000 + 50000 STX.
	if cost.EstimatedSTXCost != 94_000 {
		t.Errorf("estimated STX = %v, want 94000", cost.EstimatedSTXCost)
	}
	if cost.TotalGasCost != 48_000_000 {
		t.Errorf("total gas = %d, want 48000000", cost.TotalGasCost)
	}

	phase, ok := PhaseByKey("bootstrap")
	if !ok || phase.StX() != 500 {
		t.Errorf("bootstrap phase = %+v, ok=%v", phase, ok)
	}
	if _, ok := PhaseByKey("nope"); ok {
		t.Error("unknown phase key should not resolve")
	}
}

func TestPlanSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	original := Build([]manifest.Descriptor{
		desc("all-traits", category.Traits),
		desc("cxd-token", category.Tokens),
	}, LocalState{}, RemoteState{})

	if _, err := original.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Mode != original.Mode {
		t.Errorf("mode = %q, want %q", loaded.Mode, original.Mode)
	}
	if !reflect.DeepEqual(loaded.OrderedNames(), original.OrderedNames()) {
		t.Errorf("ordered names = %v, want %v", loaded.OrderedNames(), original.OrderedNames())
	}
	if !reflect.DeepEqual(loaded.ToDeploy, original.ToDeploy) {
		t.Errorf("to deploy = %v, want %v", loaded.ToDeploy, original.ToDeploy)
	}
	if !reflect.DeepEqual(loaded.ToSkip, original.ToSkip) {
		t.Errorf("to skip = %v, want %v", loaded.ToSkip, original.ToSkip)
	}
	if loaded.GeneratedAt.IsZero() {
		t.Error("snapshot should carry a generation timestamp")
	}
}
