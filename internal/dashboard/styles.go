package dashboard

import "github.com/charmbracelet/lipgloss"

// Semantic color palette.
var (
	colorPrimary = lipgloss.Color("#00BFFF") // Cyan — headings and labels
	colorSuccess = lipgloss.Color("#00E676") // Green — online/success
	colorDanger  = lipgloss.Color("#FF5252") // Red — offline/failed
	colorAccent  = lipgloss.Color("#FFD700") // Gold — balances
	colorMuted   = lipgloss.Color("#636363") // Gray — de-emphasized
	colorWhite   = lipgloss.Color("#EEEEEE") // Off-white — primary text
	colorSurface = lipgloss.Color("#1E1E2E") // Dark surface — status bar bg
)

// Status icons.
const (
	iconOnline  = "●"
	iconOffline = "○"
	iconSuccess = "✓"
	iconPending = "◎"
	iconFailed  = "✗"
)

var (
	styleStatusBar = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWhite).
			Bold(true).
			Padding(0, 1)

	styleOnline = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleOffline = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	stylePanelTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	styleBalance = lipgloss.NewStyle().
			Foreground(colorAccent)

	styleLabel = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleValue = lipgloss.NewStyle().
			Foreground(colorWhite)

	styleCategory = lipgloss.NewStyle().
			Foreground(colorPrimary)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)
)

// statusIcon renders a transaction status as a colored icon.
func statusIcon(status string) string {
	switch status {
	case "success":
		return styleOnline.Render(iconSuccess)
	case "pending", "submitted":
		return styleBalance.Render(iconPending)
	default:
		return styleOffline.Render(iconFailed)
	}
}
