package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"healthscore/internal/tui"
)

func newDashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"ui"},
		Short:   "Open the interactive dashboard",
		Args:    cobra.NoArgs,
		RunE:    e.runDashboard,
	}
}

func (e *env) runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, state, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	app := tui.NewApp(tui.Deps{
		Scores: e.scoreService(st),
		State:  state,
		Sync:   e.storedSyncService(cmd, st),
		Store:  st,
		Now:    e.now,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
