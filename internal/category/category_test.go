package category

import "testing"

func TestCategorize(t *testing.T) {
	t.Parallel()
	table := NewTable()

	tests := []struct {
		name string
		want Category
	}{
		{"all-traits", Traits},
		{"sip-010-trait", Traits},
		{"cxd-token", Tokens},
		{"dex-factory", DeFi},
		{"oracle-aggregator", Oracle},
		{"proposal-engine", DAO},
		{"circuit-breaker", Security},
		{"utils-encoding", Utilities},
		{"mock-price-source", Oracle}, // "price" (oracle) is declared before "mock" (testing)
		{"simulator-harness", Testing},
		{"zzz-unrelated", General},
		{"", General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := table.Categorize(tt.name); got != tt.want {
				t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	t.Parallel()
	table := NewTable()

	names := []string{"all-traits", "dex-router", "nonsense", "oracle-feed"}
	for _, name := range names {
		first := table.Categorize(name)
		second := table.Categorize(name)
		if first != second {
			t.Errorf("Categorize(%q) not stable: %q then %q", name, first, second)
		}
	}
}

func TestCategorizeTieBreakUsesTableOrder(t *testing.T) {
	t.Parallel()
	table := NewTable()

	// "trait-token" matches both the traits and tokens keyword sets; traits
	// is declared earlier and must win.
	if got := table.Categorize("trait-token"); got != Traits {
		t.Errorf("Categorize(trait-token) = %q, want %q", got, Traits)
	}

	// "governance" appears under both defi and dao; defi is declared first.
	if got := table.Categorize("governance"); got != DeFi {
		t.Errorf("Categorize(governance) = %q, want %q", got, DeFi)
	}
}

func TestCategorizeCaseInsensitive(t *testing.T) {
	t.Parallel()
	table := NewTable()

	if got := table.Categorize("DEX-Factory"); got != DeFi {
		t.Errorf("Categorize(DEX-Factory) = %q, want %q", got, DeFi)
	}
}

func TestExtendedTableAppendsAfterBase(t *testing.T) {
	t.Parallel()
	table := NewExtendedTable()

	// Base categories still win: "all-traits" contains "trait".
	if got := table.Categorize("all-traits"); got != Traits {
		t.Errorf("Categorize(all-traits) = %q, want %q", got, Traits)
	}

	// A name only matched by an extended keyword resolves to the extended
	// category under the extended table and to General under the base one.
	base := NewTable()
	if got := base.Categorize("dim-registry"); got != General {
		t.Errorf("base Categorize(dim-registry) = %q, want %q", got, General)
	}
	if got := table.Categorize("dim-registry"); got != Category("conxian_dimensional") {
		t.Errorf("extended Categorize(dim-registry) = %q, want conxian_dimensional", got)
	}
}

func TestLabelsEndWithGeneral(t *testing.T) {
	t.Parallel()
	labels := NewTable().Labels()
	if len(labels) == 0 || labels[len(labels)-1] != General {
		t.Fatalf("Labels() should end with %q, got %v", General, labels)
	}
	if labels[0] != Traits {
		t.Errorf("Labels()[0] = %q, want %q", labels[0], Traits)
	}
}
