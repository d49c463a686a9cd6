package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), ".stacksorbit", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEmptyStoreHasNoRecords(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	has, err := s.HasRecords(context.Background())
	if err != nil {
		t.Fatalf("HasRecords: %v", err)
	}
	if has {
		t.Error("fresh store should report no records")
	}

	names, err := s.Successful(context.Background())
	if err != nil {
		t.Fatalf("Successful: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("successful = %v, want empty", names)
	}
}

func TestRecordAndQuery(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, "all-traits", "0x1", "testnet", StatusSuccess); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "cxd-token", "0x2", "testnet", StatusFailed); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "all-traits", "0x3", "testnet", StatusSuccess); err != nil {
		t.Fatalf("Record: %v", err)
	}

	has, err := s.HasRecords(ctx)
	if err != nil {
		t.Fatalf("HasRecords: %v", err)
	}
	if !has {
		t.Error("store should report records")
	}

	names, err := s.Successful(ctx)
	if err != nil {
		t.Fatalf("Successful: %v", err)
	}
	// Failed deployments are excluded; duplicates collapse.
	if len(names) != 1 || names[0] != "all-traits" {
		t.Errorf("successful = %v, want [all-traits]", names)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := s.Record(ctx, name, "0x"+name, "devnet", StatusSubmitted); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent rows = %d, want 2", len(recent))
	}
	if recent[0].Name != "c" || recent[1].Name != "b" {
		t.Errorf("recent = [%s %s], want newest first [c b]", recent[0].Name, recent[1].Name)
	}
	if recent[0].DeployedAt.IsZero() {
		t.Error("deployed_at should be populated")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s1, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if err := s1.Record(ctx, "utils", "0x9", "devnet", StatusSuccess); err != nil {
		t.Fatalf("Record: %v", err)
	}
	s1.Close()

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer s2.Close()

	has, err := s2.HasRecords(ctx)
	if err != nil {
		t.Fatalf("HasRecords: %v", err)
	}
	if !has {
		t.Error("records should survive reopen")
	}
}
