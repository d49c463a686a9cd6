package hiro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Devnet, zerolog.Nop(), WithBaseURL(srv.URL))
}

func TestNetworkBaseURL(t *testing.T) {
	t.Parallel()
	cases := []struct {
		network Network
		want    string
	}{
		{Mainnet, "https://api.hiro.so"},
		{Testnet, "https://api.testnet.hiro.so"},
		{Devnet, "http://localhost:20443"},
	}
	for _, tc := range cases {
		if got := tc.network.BaseURL(); got != tc.want {
			t.Errorf("%s base URL = %q, want %q", tc.network, got, tc.want)
		}
	}
	if Network("simnet").Valid() {
		t.Error("simnet should not be a valid network")
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/info" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"stacks_tip_height": 152340,
			"network_id": 2147483648,
			"server_version": "stacks-node 2.5.0",
			"burn_block_height": 840000
		}`))
	}))

	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.StacksTipHeight != 152340 {
		t.Errorf("tip height = %d, want 152340", info.StacksTipHeight)
	}
	if info.ServerVersion != "stacks-node 2.5.0" {
		t.Errorf("server version = %q", info.ServerVersion)
	}
}

func TestStatusOfflineIsNotAnError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))

	status := c.Status(context.Background())
	if status.Online {
		t.Error("status should be offline")
	}
	if status.Error == "" {
		t.Error("offline status should carry the probe error")
	}
}

func TestGetAccountParsesHexAndDecimalAmounts(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		body        string
		wantBalance uint64
		wantLocked  uint64
		wantNonce   uint64
	}{
		{
			name:        "hex amounts",
			body:        `{"balance": "0x0000000000000000000000e8d4a51000", "locked": "0x00", "nonce": 42}`,
			wantBalance: 1_000_000_000_000,
			wantLocked:  0,
			wantNonce:   42,
		},
		{
			name:        "decimal amounts",
			body:        `{"balance": "2500000", "locked": "500000", "nonce": 7}`,
			wantBalance: 2_500_000,
			wantLocked:  500_000,
			wantNonce:   7,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasPrefix(r.URL.Path, "/v2/accounts/") {
					http.NotFound(w, r)
					return
				}
				w.Write([]byte(tc.body))
			}))

			acct, err := c.GetAccount(context.Background(), "ST000000000000000000002AMW42H")
			if err != nil {
				t.Fatalf("GetAccount: %v", err)
			}
			if acct.Balance != tc.wantBalance {
				t.Errorf("balance = %d, want %d", acct.Balance, tc.wantBalance)
			}
			if acct.Locked != tc.wantLocked {
				t.Errorf("locked = %d, want %d", acct.Locked, tc.wantLocked)
			}
			if acct.Nonce != tc.wantNonce {
				t.Errorf("nonce = %d, want %d", acct.Nonce, tc.wantNonce)
			}
		})
	}
}

func TestAccountAvailable(t *testing.T) {
	t.Parallel()
	a := Account{Balance: 100, Locked: 30}
	if got := a.Available(); got != 70 {
		t.Errorf("available = %d, want 70", got)
	}
	// Locked can momentarily exceed balance mid-unlock; never underflow.
	a = Account{Balance: 10, Locked: 30}
	if got := a.Available(); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}

func TestDeployedContractsStripsAddressPrefix(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contracts": [
			{"contract_id": "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.all-traits"},
			{"contract_id": "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM.cxd-token"}
		]}`))
	}))

	names, err := c.DeployedContracts(context.Background(), "ST1PQHQKV0RJXZFY1DGX8MNSNYVE3VGZJSRTPGZGM")
	if err != nil {
		t.Fatalf("DeployedContracts: %v", err)
	}
	want := []string{"all-traits", "cxd-token"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestGetTransactionNon2xxIsAnError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
	}))

	_, err := c.GetTransaction(context.Background(), "0xdeadbeef")
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should name the status code, got %v", err)
	}
}

func TestRecentTransactions(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit query = %q, want 5", got)
		}
		w.Write([]byte(`{"results": [
			{"tx_id": "0xaaa", "tx_status": "success", "tx_type": "smart_contract"},
			{"tx_id": "0xbbb", "tx_status": "pending", "tx_type": "token_transfer"}
		]}`))
	}))

	txs, err := c.RecentTransactions(context.Background(), "ST000000000000000000002AMW42H", 5)
	if err != nil {
		t.Fatalf("RecentTransactions: %v", err)
	}
	if len(txs) != 2 || txs[0].TxID != "0xaaa" || txs[1].TxStatus != TxStatusPending {
		t.Errorf("unexpected results: %+v", txs)
	}
}

func TestWaitForTransactionTimeout(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tx_id": "0xccc", "tx_status": "pending"}`))
	}))

	start := time.Now()
	_, err := c.WaitForTransaction(context.Background(), "0xccc", 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timed out after %v, want prompt return", elapsed)
	}
}

func TestWaitForTransactionTerminalError(t *testing.T) {
	t.Parallel()
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tx_id": "0xddd", "tx_status": "error", "tx_result": {"repr": "(err u100)"}}`))
	}))

	tx, err := c.WaitForTransaction(context.Background(), "0xddd", time.Second)
	if err != nil {
		t.Fatalf("a failed transaction is a result, not a call error: %v", err)
	}
	if tx.TxStatus != TxStatusError || tx.TxResult.Repr != "(err u100)" {
		t.Errorf("unexpected transaction: %+v", tx)
	}
}
