package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthscore/internal/service"
)

// SyncModel is the sync screen model
type SyncModel struct {
	deps     Deps
	syncing  bool
	progress service.SyncProgress
	result   *service.SyncResult
	err      error
	done     bool

	progressCh <-chan service.SyncProgress
	doneCh     <-chan SyncDoneMsg
}

// NewSyncModel creates a new sync model
func NewSyncModel(deps Deps) SyncModel {
	return SyncModel{deps: deps}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg struct {
	progress service.SyncProgress
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		m.progress = msg.progress
		return m, waitForSync(m.progressCh, m.doneCh)

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing && m.deps.Sync != nil {
			switch msg.String() {
			case "enter", "s":
				return m.start()
			}
		}
	}
	return m, nil
}

// start launches SyncAll and streams its progress back as messages
func (m SyncModel) start() (SyncModel, tea.Cmd) {
	progress := make(chan service.SyncProgress, 16)
	done := make(chan SyncDoneMsg, 1)

	m.syncing = true
	m.done = false
	m.err = nil
	m.result = nil
	m.progress = service.SyncProgress{}
	m.progressCh = progress
	m.doneCh = done

	sync := m.deps.Sync
	go func() {
		result, err := sync.SyncAll(context.Background(), progress)
		done <- SyncDoneMsg{Result: result, Err: err}
	}()

	return m, waitForSync(progress, done)
}

// waitForSync delivers the next progress update, or the final result once
// the progress channel is closed
func waitForSync(progress <-chan service.SyncProgress, done <-chan SyncDoneMsg) tea.Cmd {
	return func() tea.Msg {
		if p, ok := <-progress; ok {
			return syncProgressMsg{progress: p}
		}
		return <-done
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Strava Sync")
	sections = append(sections, title)

	if m.deps.Sync == nil {
		sections = append(sections, warningStyle.Render("\n  Strava is not configured."))
		sections = append(sections, statusStyle.Render("  Add client_id and client_secret to the config file, or import FIT files with 'healthscore import'."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync from Strava:")
	lines = append(lines, "")
	lines = append(lines, "  1. Fetch new workouts")
	lines = append(lines, "  2. Download heart-rate streams")
	lines = append(lines, "")

	short, daily := m.deps.Sync.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API limits: %d/100 (15min), %d/1000 (daily)", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Syncing with Strava...")
	lines = append(lines, "")

	p := m.progress
	switch p.Phase {
	case "workouts":
		lines = append(lines, fmt.Sprintf("  Workouts: %d stored of %d fetched", p.Completed, p.Total))
	case "heart_rate":
		frac := 0.0
		if p.Total > 0 {
			frac = float64(p.Completed) / float64(p.Total)
		}
		lines = append(lines, fmt.Sprintf("  Heart rate: %d/%d  %s", p.Completed, p.Total, p.CurrentActivity))
		lines = append(lines, "  "+RenderProgressBar(frac, 40))
	default:
		lines = append(lines, "  Starting...")
	}

	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.WorkoutsStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d workouts synced", r.WorkoutsStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new workouts"))
	}

	if r.SamplesInserted > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d heart-rate samples from %d streams", r.SamplesInserted, r.StreamsFetched)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
