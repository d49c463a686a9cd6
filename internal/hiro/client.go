// Package hiro wraps the subset of the Hiro Stacks blockchain REST API
// this tool reads: node info, account state, deployed contracts, and
// transaction status. All chain state flows through this client; nothing
// else in the program talks to the network.
package hiro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Network selects which Stacks network the client talks to.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Devnet  Network = "devnet"
)

// BaseURL returns the Hiro API endpoint for the network. Devnet points at
// the local node a Clarinet devnet exposes.
func (n Network) BaseURL() string {
	switch n {
	case Mainnet:
		return "https://api.hiro.so"
	case Testnet:
		return "https://api.testnet.hiro.so"
	default:
		return "http://localhost:20443"
	}
}

// Valid reports whether n names a known network.
func (n Network) Valid() bool {
	switch n {
	case Mainnet, Testnet, Devnet:
		return true
	}
	return false
}

// NetworkInfo is the /v2/info response subset the tool consumes.
type NetworkInfo struct {
	StacksTipHeight uint64 `json:"stacks_tip_height"`
	NetworkID       uint64 `json:"network_id"`
	ServerVersion   string `json:"server_version"`
	BurnBlockHeight uint64 `json:"burn_block_height"`
}

// APIStatus describes reachability of the Hiro API. Offline is a status,
// not an error: monitoring loops keep running through outages.
type APIStatus struct {
	Online      bool   `json:"online"`
	BlockHeight uint64 `json:"block_height"`
	NetworkID   uint64 `json:"network_id"`
	Version     string `json:"server_version"`
	Error       string `json:"error,omitempty"`
}

// Account is the decoded /v2/accounts/{addr} state. Balances are micro-STX.
type Account struct {
	Balance uint64 `json:"balance"`
	Locked  uint64 `json:"locked"`
	Nonce   uint64 `json:"nonce"`
}

// Available returns the spendable balance in micro-STX.
func (a Account) Available() uint64 {
	if a.Locked > a.Balance {
		return 0
	}
	return a.Balance - a.Locked
}

// Transaction is the /v2/transactions/{txid} response subset.
type Transaction struct {
	TxID     string `json:"tx_id"`
	TxStatus string `json:"tx_status"`
	TxType   string `json:"tx_type"`
	TxResult struct {
		Repr string `json:"repr"`
	} `json:"tx_result"`
	BlockHeight uint64 `json:"block_height"`
}

// Terminal transaction statuses reported by the API.
const (
	TxStatusSuccess = "success"
	TxStatusError   = "error"
	TxStatusPending = "pending"
)

// Client is a Hiro API client for one network. Construct with NewClient.
type Client struct {
	base   string
	apiKey string
	http   *http.Client
	log    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey attaches a Hiro API key to every request. Empty keys are
// ignored.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the network's default endpoint, e.g. a custom
// CORE_API_URL for a self-hosted node.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.base = strings.TrimRight(raw, "/")
		}
	}
}

// NewClient returns a client for the given network with a fixed 10 second
// request timeout.
func NewClient(network Network, log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		base: network.BaseURL(),
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs a GET against path and decodes the JSON body into out.
// Non-2xx responses become errors carrying the status and a body excerpt.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("hiro: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hiro: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hiro: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hiro: decode %s response: %w", path, err)
	}
	return nil
}

// Info fetches node and chain tip information.
func (c *Client) Info(ctx context.Context) (NetworkInfo, error) {
	var info NetworkInfo
	if err := c.get(ctx, "/v2/info", &info); err != nil {
		return NetworkInfo{}, err
	}
	return info, nil
}

// Status probes the API and reports reachability as a value. It never
// returns an error; failures are folded into an offline status so callers
// in polling loops do not need error branches.
func (c *Client) Status(ctx context.Context) APIStatus {
	info, err := c.Info(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("api status probe failed")
		return APIStatus{Online: false, Error: err.Error()}
	}
	return APIStatus{
		Online:      true,
		BlockHeight: info.StacksTipHeight,
		NetworkID:   info.NetworkID,
		Version:     info.ServerVersion,
	}
}

// accountPayload matches the wire shape of /v2/accounts: balance and
// locked arrive as strings, hex-prefixed on some node versions.
type accountPayload struct {
	Balance string `json:"balance"`
	Locked  string `json:"locked"`
	Nonce   uint64 `json:"nonce"`
}

// GetAccount fetches balance, locked amount, and nonce for an address.
func (c *Client) GetAccount(ctx context.Context, address string) (Account, error) {
	var payload accountPayload
	if err := c.get(ctx, "/v2/accounts/"+url.PathEscape(address)+"?proof=0", &payload); err != nil {
		return Account{}, err
	}
	balance, err := parseMicroSTX(payload.Balance)
	if err != nil {
		return Account{}, fmt.Errorf("hiro: account %s balance: %w", address, err)
	}
	locked, err := parseMicroSTX(payload.Locked)
	if err != nil {
		return Account{}, fmt.Errorf("hiro: account %s locked: %w", address, err)
	}
	return Account{Balance: balance, Locked: locked, Nonce: payload.Nonce}, nil
}

// parseMicroSTX parses a micro-STX amount that may be decimal or
// 0x-prefixed hex depending on node version. Empty means zero.
func parseMicroSTX(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 0, 64)
}

// DeployedContracts returns the bare contract names deployed by address.
// The API reports fully qualified ids (address.name); only the name part
// is returned.
func (c *Client) DeployedContracts(ctx context.Context, address string) ([]string, error) {
	var payload struct {
		Contracts []struct {
			ContractID string `json:"contract_id"`
		} `json:"contracts"`
	}
	if err := c.get(ctx, "/v2/accounts/"+url.PathEscape(address)+"/contracts", &payload); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(payload.Contracts))
	for _, contract := range payload.Contracts {
		id := contract.ContractID
		if i := strings.LastIndex(id, "."); i >= 0 {
			id = id[i+1:]
		}
		if id != "" {
			names = append(names, id)
		}
	}
	return names, nil
}

// GetTransaction fetches the current status of a transaction.
func (c *Client) GetTransaction(ctx context.Context, txID string) (Transaction, error) {
	var tx Transaction
	if err := c.get(ctx, "/v2/transactions/"+url.PathEscape(txID), &tx); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// RecentTransactions fetches up to limit recent transactions for address,
// newest first.
func (c *Client) RecentTransactions(ctx context.Context, address string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	var payload struct {
		Results []Transaction `json:"results"`
	}
	path := fmt.Sprintf("/v2/accounts/%s/transactions?limit=%d", url.PathEscape(address), limit)
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// pollInterval is how often WaitForTransaction re-checks status.
const pollInterval = 5 * time.Second

// WaitForTransaction polls the transaction until it reaches a terminal
// status (success or error) or timeout elapses. Transient fetch errors are
// logged and retried on the next tick. A terminal error status is returned
// as the transaction value, not a Go error; the caller inspects TxStatus.
func (c *Client) WaitForTransaction(ctx context.Context, txID string, timeout time.Duration) (Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastStatus string
	for {
		tx, err := c.GetTransaction(ctx, txID)
		if err != nil {
			c.log.Debug().Err(err).Str("tx_id", txID).Msg("transaction poll failed, retrying")
		} else {
			if tx.TxStatus != lastStatus {
				c.log.Info().Str("tx_id", txID).Str("status", tx.TxStatus).Msg("transaction status")
				lastStatus = tx.TxStatus
			}
			switch tx.TxStatus {
			case TxStatusSuccess, TxStatusError:
				return tx, nil
			}
		}

		select {
		case <-ctx.Done():
			return Transaction{}, fmt.Errorf("hiro: waiting for transaction %s: %w", txID, ctx.Err())
		case <-ticker.C:
		}
	}
}
