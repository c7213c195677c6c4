package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"healthscore/internal/analysis"
	"healthscore/internal/service"
)

func newScoreCmd(e *env) *cobra.Command {
	var (
		date    string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the scores for one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := e.parseDate(date)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, state, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			scores, err := e.scoreService(st).DailyScores(ctx, state, day)
			if err != nil {
				return fmt.Errorf("computing scores: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scores)
			}
			printScores(cmd.OutOrStdout(), scores)
			return nil
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "day to score as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print JSON")
	return cmd
}

func printScores(w io.Writer, s *service.DailyScores) {
	fmt.Fprintf(w, "%s\n", s.Date.Format("Monday, January 2 2006"))
	if !s.DataAvailable {
		fmt.Fprintln(w, "  no samples for this day; scores use defaults")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Strain     %5.1f / %.0f  %s\n", s.Strain.Score, analysis.MaxStrain, analysis.StrainLevel(s.Strain.Score))
	fmt.Fprintf(w, "  cardio %.1f  muscle %.1f  active %.0f min\n",
		s.Strain.CardioPoints, s.Strain.MusclePoints, s.Strain.ActiveMinutes())

	fmt.Fprintf(w, "Recovery   %5.0f%%     %s\n", s.Recovery.TotalScore, analysis.RecoveryLevel(s.Recovery.TotalScore))
	fmt.Fprintf(w, "  HRV %.0f ms  RHR %.0f bpm  resp %.1f/min  (%s)\n",
		s.Recovery.Metrics.HRV, s.Recovery.Metrics.RHR, s.Recovery.Metrics.Respiratory, s.Recovery.Mode)

	fmt.Fprintf(w, "Sleep      %5.0f%%\n", s.Sleep.OverallScore)
	if m := s.Sleep.MainSleep; m != nil {
		fmt.Fprintf(w, "  %s-%s  asleep %s  need %s\n",
			m.Start.Format("15:04"), m.End.Format("15:04"), hoursMinutes(m.Asleep), hoursMinutes(s.SleepNeed.Total()))
	}

	fmt.Fprintf(w, "Stress     %5.2f / 3  %s\n", s.Stress.TotalDayStress, analysis.StressLevel(s.Stress.TotalDayStress))

	if s.Vitals.AvgSpO2 > 0 || s.Vitals.AvgRespiratory > 0 {
		fmt.Fprintf(w, "Vitals     SpO2 %.1f%%  resp %.1f/min\n", s.Vitals.AvgSpO2, s.Vitals.AvgRespiratory)
	}
}

func hoursMinutes(d time.Duration) string {
	d = d.Round(time.Minute)
	return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
}
