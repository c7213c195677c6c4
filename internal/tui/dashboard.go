package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"healthscore/internal/analysis"
	"healthscore/internal/service"
)

// DashboardModel is the daily scores screen
type DashboardModel struct {
	deps     Deps
	date     time.Time
	data     *service.DailyScores
	lastSync time.Time
	loading  bool
	err      error
}

// NewDashboardModel creates a dashboard showing the day containing date
func NewDashboardModel(deps Deps, date time.Time) DashboardModel {
	return DashboardModel{
		deps:    deps,
		date:    analysis.DayStart(date),
		loading: true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	date     time.Time
	data     *service.DailyScores
	lastSync time.Time
	err      error
}

func (m DashboardModel) loadData() tea.Msg {
	ctx := context.Background()
	data, err := m.deps.Scores.DailyScores(ctx, m.deps.State, m.date)
	if err != nil {
		return dashboardDataMsg{date: m.date, err: err}
	}
	return dashboardDataMsg{date: m.date, data: data, lastSync: m.deps.lastSync(ctx)}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if !msg.date.Equal(m.date) {
			return m, nil // stale load for a day no longer shown
		}
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		m.lastSync = msg.lastSync
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		case "left", "h":
			m.date = analysis.DaysBefore(m.date, 1)
			m.loading = true
			return m, m.loadData
		case "right", "l":
			next := m.date.AddDate(0, 0, 1)
			if next.After(m.deps.now()) {
				return m, nil
			}
			m.date = next
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  Scoring %s...", m.date.Format("Mon Jan 2"))
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available. Press 's' to sync with Strava."
	}

	var sections []string
	sections = append(sections, cardTitleStyle.Render(m.date.Format("Monday, January 2 2006")))

	if w := m.renderWarning(); w != "" {
		sections = append(sections, w)
	}

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderStrainCard(), "  ", m.renderRecoveryCard())
	bottomRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderSleepCard(), "  ", m.renderStressCard())
	sections = append(sections, topRow, bottomRow)

	if chart := m.renderStressChart(); chart != "" {
		sections = append(sections, chart)
	}

	sections = append(sections, statusStyle.Render(fmt.Sprintf(
		"%s  ←/→ change day  r refresh  s sync", m.syncLine())))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) syncLine() string {
	if m.lastSync.IsZero() {
		return "Never synced."
	}
	return "Last synced " + humanize.RelTime(m.lastSync, m.deps.now(), "ago", "from now") + "."
}

func (m DashboardModel) renderWarning() string {
	switch {
	case !m.deps.State.ProviderAvailable:
		return warningStyle.Render("  Data store unavailable (" + m.deps.State.Reason + "), showing defaults")
	case !m.data.DataAvailable:
		return warningStyle.Render("  No samples recorded for this day, showing defaults")
	}
	return ""
}

func (m DashboardModel) renderStrainCard() string {
	s := m.data.Strain
	title := cardTitleStyle.Render("Strain")
	value := bigValueStyle.Foreground(stressColor(s.Score / analysis.MaxStrain * analysis.MaxStress)).
		Render(fmt.Sprintf("%.1f / %.0f  %s", s.Score, analysis.MaxStrain, analysis.StrainLevel(s.Score)))

	lines := []string{
		RenderMetric("Active", fmt.Sprintf("%.0f min", s.ActiveMinutes())),
		RenderMetric("Cardio load", fmt.Sprintf("%.0f", s.CardioPoints)),
		RenderMetric("Muscle load", fmt.Sprintf("%.0f", s.MusclePoints)),
		RenderMetric("Zones (min)", formatZoneMinutes(s.ZoneMinutes)),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title, value}, lines...)...))
}

func (m DashboardModel) renderRecoveryCard() string {
	r := m.data.Recovery
	title := cardTitleStyle.Render("Recovery")
	value := bigValueStyle.Foreground(scoreColor(r.TotalScore)).
		Render(fmt.Sprintf("%.0f%%  %s", r.TotalScore, analysis.RecoveryLevel(r.TotalScore)))

	lines := []string{
		RenderMetric("HRV", fmt.Sprintf("%.0f / 100", r.Metrics.HRV)),
		RenderMetric("Resting HR", fmt.Sprintf("%.0f / 100", r.Metrics.RHR)),
		RenderMetric("Respiratory", fmt.Sprintf("%.0f / 100", r.Metrics.Respiratory)),
		RenderMetric("Sleep", fmt.Sprintf("%.0f / 100", r.Metrics.SleepEfficiency)),
	}
	if r.Metrics.Strain != nil {
		lines = append(lines, RenderMetric("Prior strain", fmt.Sprintf("%.0f / 100", *r.Metrics.Strain)))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("baseline HRV %.0f ms, RHR %.0f bpm",
		m.data.Baseline.HRV, m.data.Baseline.RHR)))
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title, value}, lines...)...))
}

func (m DashboardModel) renderSleepCard() string {
	p := m.data.Sleep
	title := cardTitleStyle.Render("Sleep")

	if p.MainSleep == nil {
		return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title,
			mutedStyle.Render("No main sleep recorded")))
	}

	value := bigValueStyle.Foreground(scoreColor(p.OverallScore)).Render(fmt.Sprintf("%.0f%%", p.OverallScore))
	lines := []string{
		RenderMetric("Asleep", fmt.Sprintf("%s of %s", formatHours(p.MainSleep.Asleep), formatHours(m.data.SleepNeed.Total()))),
		RenderMetric("Window", p.MainSleep.Start.Format("15:04")+" - "+p.MainSleep.End.Format("15:04")),
		RenderMetric("Hours vs need", fmt.Sprintf("%.0f", p.HoursVsNeeded)),
		RenderMetric("Consistency", fmt.Sprintf("%.0f", p.SleepConsistency)),
		RenderMetric("Efficiency", fmt.Sprintf("%.0f", p.SleepEfficiency)),
		RenderMetric("Calm", fmt.Sprintf("%.0f", p.SleepStress)),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title, value}, lines...)...))
}

func (m DashboardModel) renderStressCard() string {
	s := m.data.Stress
	title := cardTitleStyle.Render("Stress")
	value := bigValueStyle.Foreground(stressColor(s.TotalDayStress)).
		Render(fmt.Sprintf("%.2f / 3  %s", s.TotalDayStress, analysis.StressLevel(s.TotalDayStress)))

	lines := []string{
		RenderMetric("While asleep", fmt.Sprintf("%.2f", s.SleepStress)),
		RenderMetric("At rest", fmt.Sprintf("%.2f", s.NonActivityStress)),
		RenderMetric("Hours measured", fmt.Sprintf("%d", len(s.Hourly))),
	}
	if v := m.data.Vitals; v.AvgSpO2 > 0 || v.AvgRespiratory > 0 {
		lines = append(lines,
			RenderMetric("SpO2", formatOptional(v.AvgSpO2, "%.1f%%")),
			RenderMetric("Respiratory", formatOptional(v.AvgRespiratory, "%.1f br/min")),
		)
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title, value}, lines...)...))
}

func (m DashboardModel) renderStressChart() string {
	series := stressSeries(m.data.Stress.Hourly, uint64(m.date.Unix()))
	if len(series) == 0 {
		return ""
	}

	caption := "hourly stress"
	if len(m.data.Stress.Hourly) == 1 {
		caption = "illustrative curve from a single reading"
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(6),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(analysis.MaxStress),
		asciigraph.Caption(caption),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render("Stress Through the Day"), graph))
}

// stressSeries returns the values to chart for a day's hourly stress
func stressSeries(hourly []analysis.StressMoment, seed uint64) []float64 {
	switch len(hourly) {
	case 0:
		return nil
	case 1:
		return illustrativeStressCurve(hourly[0].Stress, hourly[0].HourStart.Hour(), seed)
	}
	out := make([]float64, len(hourly))
	for i, h := range hourly {
		out[i] = h.Stress
	}
	return out
}

func formatZoneMinutes(z [5]float64) string {
	return fmt.Sprintf("%.0f/%.0f/%.0f/%.0f/%.0f", z[0], z[1], z[2], z[3], z[4])
}

func formatHours(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	min := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, min)
	}
	return fmt.Sprintf("%dm", min)
}

func formatOptional(v float64, format string) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf(format, v)
}
