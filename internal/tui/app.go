package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthscore/internal/service"
	"healthscore/internal/store"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenTrends
	ScreenSync
	ScreenHelp
)

// Deps are the services the screens read from
type Deps struct {
	Scores *service.ScoreService
	State  service.InitState
	Sync   *service.SyncService // nil when Strava is not configured
	Store  *store.Store         // nil hides the last-synced line
	Now    func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// lastSync returns the most recent Strava sync or file import
func (d Deps) lastSync(ctx context.Context) time.Time {
	if d.Store == nil {
		return time.Time{}
	}
	var latest time.Time
	for _, key := range []string{store.SyncKeyLastStravaSync, store.SyncKeyLastFITImport, store.SyncKeyLastHealthExport} {
		if t, err := d.Store.GetSyncTime(ctx, key); err == nil && t.After(latest) {
			latest = t
		}
	}
	return latest
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard  DashboardModel
	trends     TrendsModel
	syncScreen SyncModel
	help       HelpModel

	deps Deps

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(deps Deps) *App {
	return &App{
		screen:     ScreenDashboard,
		deps:       deps,
		dashboard:  NewDashboardModel(deps, deps.now()),
		trends:     NewTrendsModel(deps, deps.now(), service.DefaultTrendDays, 0, 0),
		syncScreen: NewSyncModel(deps),
		help:       NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings (unless a sync is running)
		if a.screen != ScreenSync || !a.syncScreen.syncing {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.deps, a.dashboard.date)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenTrends
				a.trends = NewTrendsModel(a.deps, a.dashboard.date, a.trends.days, a.width, a.height)
				return a, a.trends.Init()
			case "3", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The trends viewport tracks the window even when hidden
		m, cmd := a.trends.Update(msg)
		a.trends = m.(TrendsModel)
		if a.screen == ScreenTrends {
			return a, cmd
		}

	case SyncCompleteMsg:
		// Rescore after new data arrives; the sync screen keeps its summary
		a.dashboard = NewDashboardModel(a.deps, a.dashboard.date)
		return a, a.dashboard.Init()
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenTrends:
		var m tea.Model
		m, cmd = a.trends.Update(msg)
		a.trends = m.(TrendsModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenTrends:
		content = a.trends.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("healthscore")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Today", ScreenDashboard},
		{"2", "Trends", ScreenTrends},
		{"3", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}
