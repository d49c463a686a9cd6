// Package monitor polls chain state for a deployer account in the
// background and exposes the latest view as an atomically swapped
// immutable snapshot. Consumers (CLI output, dashboard ticks) read whole
// snapshots and never see a half-updated view.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/stacksorbit/stacksorbit/internal/hiro"
)

// Poll intervals. Dashboard sessions poll faster for responsive rendering;
// after an error cycle the monitor backs off.
const (
	DefaultInterval   = 10 * time.Second
	DashboardInterval = 2 * time.Second
	errorBackoff      = 30 * time.Second
)

// Snapshot is one immutable observation of chain state. A new snapshot
// replaces the previous one wholesale.
type Snapshot struct {
	Taken     time.Time          `json:"taken"`
	Status    hiro.APIStatus     `json:"api_status"`
	Account   hiro.Account       `json:"account"`
	Contracts []string           `json:"deployed_contracts"`
	Recent    []hiro.Transaction `json:"recent_transactions,omitempty"`
	Err       string             `json:"error,omitempty"`
}

// Monitor polls the Hiro API for one address. Construct with New.
type Monitor struct {
	client   *hiro.Client
	address  string
	interval time.Duration
	log      zerolog.Logger

	latest atomic.Pointer[Snapshot]

	// counters for the summary written on stop
	polls      atomic.Uint64
	errors     atomic.Uint64
	detections atomic.Uint64
	started    time.Time
}

// New returns a monitor for address polling at interval (DefaultInterval
// when zero).
func New(client *hiro.Client, address string, interval time.Duration, log zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		client:   client,
		address:  address,
		interval: interval,
		log:      log,
	}
}

// Latest returns the most recent snapshot, or nil before the first poll
// completes.
func (m *Monitor) Latest() *Snapshot {
	return m.latest.Load()
}

// Poll performs one observation cycle and publishes the resulting
// snapshot. An API error yields a snapshot carrying the error rather than
// a failed call: monitoring keeps a continuous record through outages.
func (m *Monitor) Poll(ctx context.Context) *Snapshot {
	m.polls.Add(1)
	snap := &Snapshot{
		Taken:  time.Now().UTC(),
		Status: m.client.Status(ctx),
	}

	if snap.Status.Online {
		account, err := m.client.GetAccount(ctx, m.address)
		if err != nil {
			snap.Err = err.Error()
		} else {
			snap.Account = account
		}

		contracts, err := m.client.DeployedContracts(ctx, m.address)
		if err != nil && snap.Err == "" {
			snap.Err = err.Error()
		}
		snap.Contracts = contracts

		if recent, err := m.client.RecentTransactions(ctx, m.address, 10); err == nil {
			snap.Recent = recent
		}
	}

	if prev := m.latest.Load(); prev != nil && snap.Err == "" {
		if snap.Account.Nonce > prev.Account.Nonce {
			m.detections.Add(1)
			m.log.Info().
				Uint64("nonce", snap.Account.Nonce).
				Uint64("previous", prev.Account.Nonce).
				Msg("new deployment activity detected")
		}
	}
	if snap.Err != "" || !snap.Status.Online {
		m.errors.Add(1)
	}

	m.latest.Store(snap)
	return snap
}

// Run polls until ctx is cancelled, then writes a monitoring summary under
// root/.stacksorbit. Errors stretch the next sleep to the backoff
// interval so a down API is not hammered.
func (m *Monitor) Run(ctx context.Context, root string) error {
	m.started = time.Now().UTC()
	m.log.Info().Str("address", m.address).Dur("interval", m.interval).Msg("monitoring started")

	for {
		snap := m.Poll(ctx)

		sleep := m.interval
		if snap.Err != "" || !snap.Status.Online {
			sleep = errorBackoff
			m.log.Warn().Str("error", firstNonEmpty(snap.Err, snap.Status.Error)).Msg("poll cycle failed, backing off")
		}

		select {
		case <-ctx.Done():
			if err := m.writeSummary(root); err != nil {
				m.log.Warn().Err(err).Msg("writing monitoring summary")
			}
			m.log.Info().Msg("monitoring stopped")
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// Summary is the aggregate record written when monitoring stops.
type Summary struct {
	Address       string    `json:"address"`
	StartedAt     time.Time `json:"started_at"`
	StoppedAt     time.Time `json:"stopped_at"`
	Polls         uint64    `json:"polls"`
	Errors        uint64    `json:"errors"`
	NewDeployment uint64    `json:"new_deployments_detected"`
	Last          *Snapshot `json:"last_snapshot,omitempty"`
}

func (m *Monitor) writeSummary(root string) error {
	dir := filepath.Join(root, ".stacksorbit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("monitor: create state dir: %w", err)
	}
	summary := Summary{
		Address:       m.address,
		StartedAt:     m.started,
		StoppedAt:     time.Now().UTC(),
		Polls:         m.polls.Load(),
		Errors:        m.errors.Load(),
		NewDeployment: m.detections.Load(),
		Last:          m.latest.Load(),
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("monitor: encode summary: %w", err)
	}
	path := filepath.Join(dir, "monitoring_summary.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("monitor: write summary: %w", err)
	}
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
