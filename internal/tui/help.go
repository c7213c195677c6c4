package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Keyboard Shortcuts"))

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Today's scores"},
		{"2", "Trends"},
		{"3 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	}))

	sections = append(sections, m.renderSection("Today", []keyHelp{
		{"← / h", "Previous day"},
		{"→ / l", "Next day"},
		{"r", "Rescore"},
	}))

	sections = append(sections, m.renderSection("Trends", []keyHelp{
		{"j / k", "Scroll"},
		{"+ / -", "Double / halve the range"},
		{"r", "Rescore"},
	}))

	sections = append(sections, m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	}))

	sections = append(sections, m.renderScoresHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderScoresHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, sectionStyle.Render("Scores Explained"))
	lines = append(lines, "")

	scores := []struct {
		name string
		desc string
	}{
		{"Strain (0-21)", "Heart-rate zone minutes plus strength work. Logarithmic: each point is harder to earn."},
		{"Recovery (0-100%)", "HRV, resting HR, breathing and sleep against your baselines, less yesterday's strain."},
		{"Stress (0-3)", "Hourly HR and HRV against baseline, weighted by time of day."},
		{"Sleep (0-100%)", "Mean of hours vs need, consistency, efficiency and calm during sleep."},
		{"Load balance", "28-day minus 7-day strain average. Positive means fresh."},
	}

	for _, s := range scores {
		lines = append(lines, "  "+helpKeyStyle.Render(s.name))
		lines = append(lines, "  "+mutedStyle.Render(s.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
