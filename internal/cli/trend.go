package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"healthscore/internal/analysis"
	"healthscore/internal/service"
)

func newTrendCmd(e *env) *cobra.Command {
	var (
		end     string
		days    int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Print daily scores and strain load balance over a range of days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			last, err := e.parseDate(end)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, state, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			trend, err := e.scoreService(st).Trend(ctx, state, last, days)
			if err != nil {
				return fmt.Errorf("computing trend: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(trend)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTrend(trend))
			return nil
		},
	}

	cmd.Flags().StringVar(&end, "end", "", "last day of the range as YYYY-MM-DD (default today)")
	cmd.Flags().IntVarP(&days, "days", "n", service.DefaultTrendDays, "number of days")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func renderTrend(t *service.Trend) string {
	rows := make([][]string, 0, len(t.Days))
	for i, d := range t.Days {
		balance := ""
		if i < len(t.Load) {
			balance = fmt.Sprintf("%+.1f", t.Load[i].Balance)
		}
		rows = append(rows, []string{
			d.Date.Format("Mon Jan 02"),
			fmt.Sprintf("%.1f", d.Strain.Score),
			fmt.Sprintf("%.0f%%", d.Recovery.TotalScore),
			fmt.Sprintf("%.0f%%", d.Sleep.OverallScore),
			fmt.Sprintf("%.2f", d.Stress.TotalDayStress),
			balance,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Day", "Strain", "Recovery", "Sleep", "Stress", "Balance").
		Rows(rows...)

	out := tbl.String()
	if n := len(t.Load); n > 0 {
		out += "\n" + analysis.BalanceDescription(t.Load[n-1].Balance)
	}
	return out
}
