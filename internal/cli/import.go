package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"healthscore/internal/fitfile"
	"healthscore/internal/service"
	"healthscore/internal/store"
)

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.fit|export.json>...",
		Short: "Import FIT activity files or Health Auto Export JSON files",
		Long: `Import workouts and biometric samples from files.

FIT activity files add a workout and its heart-rate stream. Health Auto Export
JSON files (REST export format) add workouts plus heart rate, HRV,
respiratory rate, blood oxygen and sleep stages. Samples already stored are
skipped, so overlapping files can be imported again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			im := service.NewImporter(st, e.logger)
			out := cmd.OutOrStdout()

			var failed, samples int
			for _, path := range args {
				res, err := im.ImportFile(ctx, path)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					failed++
					e.logger.Error("import failed", "path", path, "error", err)
					continue
				}
				samples += res.SamplesInserted
				fmt.Fprintln(out, importSummary(res))
			}

			fmt.Fprintf(out, "imported %d of %d files, %s new samples\n",
				len(args)-failed, len(args), humanize.Comma(int64(samples)))
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to import", failed, len(args))
			}
			return nil
		},
	}
}

func importSummary(res *service.ImportResult) string {
	if res.Source == fitfile.Source {
		return fmt.Sprintf("%s: %s workout, %s heart-rate samples",
			res.Path, res.ActivityType, humanize.Comma(int64(res.SamplesInserted)))
	}

	kinds := make([]string, 0, len(res.SamplesByKind))
	for k := range res.SamplesByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(res.SamplesByKind[store.SampleKind(k)])), k))
	}
	line := fmt.Sprintf("%s: %s workouts", res.Path, humanize.Comma(int64(res.WorkoutsStored)))
	if len(parts) > 0 {
		line += ", " + strings.Join(parts, ", ")
	}
	if res.Skipped > 0 {
		line += fmt.Sprintf(" (%s points skipped)", humanize.Comma(int64(res.Skipped)))
	}
	return line
}
