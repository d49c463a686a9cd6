package monitor

import (
	"context"
	"time"

	"github.com/stacksorbit/stacksorbit/internal/hiro"
)

// Verification compares the contracts a project expects on chain with the
// contracts actually deployed by the account.
type Verification struct {
	Timestamp time.Time `json:"timestamp"`
	Address   string    `json:"address"`
	Expected  []string  `json:"expected"`
	Deployed  []string  `json:"deployed"`
	Verified  []string  `json:"verified"`
	Missing   []string  `json:"missing"`
	Extra     []string  `json:"extra"`
	Success   bool      `json:"success"`
}

// Verify fetches the account's deployed contracts and reconciles them
// against expected. Success means nothing expected is missing; extra
// contracts on chain do not fail verification.
func Verify(ctx context.Context, client *hiro.Client, address string, expected []string) (Verification, error) {
	deployed, err := client.DeployedContracts(ctx, address)
	if err != nil {
		return Verification{}, err
	}
	v := Reconcile(expected, deployed)
	v.Address = address
	return v, nil
}

// Reconcile computes the verified/missing/extra partition of expected vs
// deployed name sets.
func Reconcile(expected, deployed []string) Verification {
	v := Verification{
		Timestamp: time.Now().UTC(),
		Expected:  expected,
		Deployed:  deployed,
		Verified:  []string{},
		Missing:   []string{},
		Extra:     []string{},
	}

	onChain := make(map[string]bool, len(deployed))
	for _, name := range deployed {
		onChain[name] = true
	}
	wanted := make(map[string]bool, len(expected))
	for _, name := range expected {
		wanted[name] = true
	}

	for _, name := range expected {
		if onChain[name] {
			v.Verified = append(v.Verified, name)
		} else {
			v.Missing = append(v.Missing, name)
		}
	}
	for _, name := range deployed {
		if !wanted[name] {
			v.Extra = append(v.Extra, name)
		}
	}
	v.Success = len(v.Missing) == 0
	return v
}
