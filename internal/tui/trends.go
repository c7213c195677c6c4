package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"healthscore/internal/analysis"
	"healthscore/internal/service"
)

// TrendsModel is the multi-day trends screen
type TrendsModel struct {
	deps     Deps
	end      time.Time
	days     int
	data     *service.Trend
	viewport viewport.Model
	loading  bool
	err      error
	ready    bool
}

// NewTrendsModel creates a trends screen ending on end
func NewTrendsModel(deps Deps, end time.Time, days, width, height int) TrendsModel {
	m := TrendsModel{
		deps:    deps,
		end:     end,
		days:    days,
		loading: true,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the trends screen
func (m TrendsModel) Init() tea.Cmd {
	return m.loadTrend
}

type trendLoadedMsg struct {
	data *service.Trend
	err  error
}

func (m TrendsModel) loadTrend() tea.Msg {
	data, err := m.deps.Scores.Trend(context.Background(), m.deps.State, m.end, m.days)
	return trendLoadedMsg{data: data, err: err}
}

// Update handles messages
func (m TrendsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadTrend
		case "+":
			m.days *= 2
			m.loading = true
			return m, m.loadTrend
		case "-":
			if m.days > 7 {
				m.days /= 2
				m.loading = true
				return m, m.loadTrend
			}
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the trends screen
func (m TrendsModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  Scoring the last %d days...", m.days)
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  +/-: range  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m TrendsModel) renderContent() string {
	if m.data == nil || len(m.data.Days) == 0 {
		return "\n  No days to show."
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Last %d Days", len(m.data.Days))))
	sections = append(sections, m.renderCharts())
	sections = append(sections, m.renderLoad())
	sections = append(sections, m.renderTable())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TrendsModel) renderCharts() string {
	strain := make([]float64, len(m.data.Days))
	recovery := make([]float64, len(m.data.Days))
	for i, d := range m.data.Days {
		strain[i] = d.Strain.Score
		recovery[i] = d.Recovery.TotalScore
	}
	if len(strain) < 2 {
		return ""
	}

	strainGraph := asciigraph.Plot(strain,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(analysis.MaxStrain),
		asciigraph.Caption("strain (0-21)"),
	)
	recoveryGraph := asciigraph.Plot(recovery,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Caption("recovery (%)"),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, strainGraph, "", recoveryGraph))
}

func (m TrendsModel) renderLoad() string {
	if len(m.data.Load) == 0 {
		return ""
	}
	latest := m.data.Load[len(m.data.Load)-1]

	lines := []string{
		cardTitleStyle.Render("Load Balance"),
		RenderMetric("Acute (7d)", fmt.Sprintf("%.1f", latest.Acute)),
		RenderMetric("Chronic (28d)", fmt.Sprintf("%.1f", latest.Chronic)),
		RenderMetric("Balance", fmt.Sprintf("%+.1f", latest.Balance)),
		"",
		mutedStyle.Render(analysis.BalanceDescription(latest.Balance)),
	}
	return cardStyle.Width(50).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m TrendsModel) renderTable() string {
	var rows []string
	rows = append(rows, tableHeaderStyle.Render(fmt.Sprintf("%-10s  %6s  %8s  %5s  %6s",
		"Date", "Strain", "Recovery", "Sleep", "Stress")))

	// Newest first
	for i := len(m.data.Days) - 1; i >= 0; i-- {
		d := m.data.Days[i]
		sleep := "-"
		if d.Sleep.MainSleep != nil {
			sleep = fmt.Sprintf("%.0f", d.Sleep.OverallScore)
		}
		row := fmt.Sprintf("%-10s  %6.1f  %7.0f%%  %5s  %6.2f",
			d.Date.Format("Mon Jan 02"),
			d.Strain.Score,
			d.Recovery.TotalScore,
			sleep,
			d.Stress.TotalDayStress,
		)
		if !d.DataAvailable {
			row = mutedStyle.Render(row)
		}
		rows = append(rows, tableRowStyle.Render(row))
	}
	return strings.Join(rows, "\n")
}
