// Package dashboard renders a live terminal view of chain state for a
// deployer account: API status, account balances, deployed contracts
// grouped by category, and recent transactions. Data comes from a
// background monitor; the model only reads its latest snapshot on ticks.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stacksorbit/stacksorbit/internal/category"
	"github.com/stacksorbit/stacksorbit/internal/hiro"
	"github.com/stacksorbit/stacksorbit/internal/history"
	"github.com/stacksorbit/stacksorbit/internal/monitor"
)

// refreshInterval is how often the view re-reads the monitor snapshot.
const refreshInterval = 2 * time.Second

// tickMsg drives periodic re-render.
type tickMsg time.Time

// snapshotMsg carries a forced refresh result.
type snapshotMsg *monitor.Snapshot

// savedMsg reports the outcome of a snapshot save.
type savedMsg struct {
	path string
	err  error
}

// historyMsg carries freshly loaded local deployment records.
type historyMsg []history.Record

// Model is the root bubbletea model for the dashboard.
type Model struct {
	mon     *monitor.Monitor
	table   *category.Table
	store   *history.Store
	network hiro.Network
	address string
	root    string

	spinner     spinner.Model
	deployments []history.Record
	width       int
	height      int
	message     string
}

// New returns a dashboard model reading chain state from mon and local
// deployment rows from store (nil disables the deployments panel). root is
// where saved snapshots are written.
func New(mon *monitor.Monitor, table *category.Table, store *history.Store, network hiro.Network, address, root string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)
	return Model{
		mon:     mon,
		table:   table,
		store:   store,
		network: network,
		address: address,
		root:    root,
		spinner: sp,
	}
}

// Init starts the spinner, the refresh ticker, and the first history load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd(), m.historyCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles input and refresh messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.message = "refreshing..."
			return m, tea.Batch(m.refreshCmd(), m.historyCmd())
		case "s":
			return m, m.saveCmd()
		}

	case tickMsg:
		return m, tickCmd()

	case snapshotMsg:
		m.message = ""

	case historyMsg:
		m.deployments = msg

	case savedMsg:
		if msg.err != nil {
			m.message = "save failed: " + msg.err.Error()
		} else {
			m.message = "saved " + msg.path
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refreshCmd forces an immediate poll instead of waiting for the monitor's
// own interval.
func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return snapshotMsg(m.mon.Poll(ctx))
	}
}

// historyCmd loads recent local deployment records. A nil store or a
// query error renders as an empty panel rather than failing the view.
func (m Model) historyCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		records, err := m.store.Recent(ctx, 10)
		if err != nil {
			return historyMsg(nil)
		}
		return historyMsg(records)
	}
}

// saveCmd writes the current snapshot as JSON under the project state dir.
func (m Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		snap := m.mon.Latest()
		if snap == nil {
			return savedMsg{err: fmt.Errorf("no snapshot yet")}
		}
		dir := filepath.Join(m.root, ".stacksorbit")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return savedMsg{err: err}
		}
		path := filepath.Join(dir, "dashboard_"+time.Now().Format("20060102_150405")+".json")
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return savedMsg{err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: path}
	}
}

// View renders the full dashboard.
func (m Model) View() string {
	snap := m.mon.Latest()

	var b strings.Builder
	b.WriteString(m.statusBar(snap))
	b.WriteString("\n\n")

	if snap == nil {
		b.WriteString("  " + m.spinner.View() + " fetching chain state...\n")
	} else {
		b.WriteString(m.accountPanel(snap))
		b.WriteString("\n")
		b.WriteString(m.contractsPanel(snap))
		b.WriteString("\n")
		b.WriteString(m.transactionsPanel(snap))
		b.WriteString("\n")
	}
	// Local history renders regardless of chain reachability.
	b.WriteString(m.deploymentsPanel())
	b.WriteString("\n")

	footer := "q quit · r refresh · s save snapshot"
	if m.message != "" {
		footer += "   " + m.message
	}
	b.WriteString(styleFooter.Render(footer))
	return b.String()
}

func (m Model) statusBar(snap *monitor.Snapshot) string {
	state := styleOffline.Render(iconOffline + " offline")
	height := "-"
	if snap != nil && snap.Status.Online {
		state = styleOnline.Render(iconOnline + " online")
		height = fmt.Sprintf("%d", snap.Status.BlockHeight)
	}
	return styleStatusBar.Render(fmt.Sprintf(
		"StacksOrbit  %s  block %s  %s", m.network, height, state,
	))
}

func (m Model) accountPanel(snap *monitor.Snapshot) string {
	var b strings.Builder
	b.WriteString(stylePanelTitle.Render("Account") + "\n")
	b.WriteString(styleLabel.Render("address   ") + styleValue.Render(m.address) + "\n")
	b.WriteString(styleLabel.Render("balance   ") + styleBalance.Render(formatSTX(snap.Account.Balance)) + "\n")
	b.WriteString(styleLabel.Render("locked    ") + styleValue.Render(formatSTX(snap.Account.Locked)) + "\n")
	b.WriteString(styleLabel.Render("available ") + styleBalance.Render(formatSTX(snap.Account.Available())) + "\n")
	b.WriteString(styleLabel.Render("nonce     ") + styleValue.Render(fmt.Sprintf("%d", snap.Account.Nonce)))
	return stylePanel.Render(b.String())
}

func (m Model) contractsPanel(snap *monitor.Snapshot) string {
	var b strings.Builder
	title := fmt.Sprintf("Deployed Contracts (%d)", len(snap.Contracts))
	b.WriteString(stylePanelTitle.Render(title) + "\n")

	if len(snap.Contracts) == 0 {
		b.WriteString(styleLabel.Render("none"))
		return stylePanel.Render(b.String())
	}

	groups := GroupByCategory(m.table, snap.Contracts)
	for i, label := range CategoryOrder(m.table, groups) {
		if i > 0 {
			b.WriteString("\n")
		}
		names := groups[label]
		b.WriteString(styleCategory.Render(string(label)) + styleLabel.Render(fmt.Sprintf(" (%d)", len(names))) + "\n")
		b.WriteString("  " + styleValue.Render(strings.Join(names, ", ")))
	}
	return stylePanel.Render(b.String())
}

func (m Model) deploymentsPanel() string {
	var b strings.Builder
	b.WriteString(stylePanelTitle.Render("Recent Deployments") + "\n")
	if len(m.deployments) == 0 {
		b.WriteString(styleLabel.Render("none"))
		return stylePanel.Render(b.String())
	}
	for i, r := range m.deployments {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(statusIcon(r.Status) + " " +
			styleValue.Render(r.Name) + " " +
			styleLabel.Render(r.Network+" "+r.DeployedAt.Format("01-02 15:04")))
	}
	return stylePanel.Render(b.String())
}

func (m Model) transactionsPanel(snap *monitor.Snapshot) string {
	var b strings.Builder
	b.WriteString(stylePanelTitle.Render("Recent Transactions") + "\n")
	if len(snap.Recent) == 0 {
		b.WriteString(styleLabel.Render("none"))
		return stylePanel.Render(b.String())
	}
	for i, tx := range snap.Recent {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(statusIcon(tx.TxStatus) + " " +
			styleValue.Render(shortTxID(tx.TxID)) + " " +
			styleLabel.Render(tx.TxType))
	}
	return stylePanel.Render(b.String())
}

// GroupByCategory buckets contract names by their category, preserving
// name order within each bucket.
func GroupByCategory(table *category.Table, names []string) map[category.Category][]string {
	groups := make(map[category.Category][]string)
	for _, name := range names {
		cat := table.Categorize(name)
		groups[cat] = append(groups[cat], name)
	}
	return groups
}

// CategoryOrder returns the table's labels restricted to those present in
// groups, in the table's declaration order (traits first, general last).
func CategoryOrder(table *category.Table, groups map[category.Category][]string) []category.Category {
	var out []category.Category
	for _, label := range table.Labels() {
		if _, ok := groups[label]; ok {
			out = append(out, label)
		}
	}
	return out
}

// formatSTX renders a micro-STX amount as whole STX.
func formatSTX(micro uint64) string {
	return fmt.Sprintf("%.6f STX", float64(micro)/1_000_000)
}

// shortTxID truncates long transaction ids for display.
func shortTxID(txID string) string {
	if len(txID) <= 18 {
		return txID
	}
	return txID[:10] + "…" + txID[len(txID)-6:]
}
