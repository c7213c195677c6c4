package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"healthscore/internal/auth"
	"healthscore/internal/service"
	"healthscore/internal/store"
	"healthscore/internal/strava"
)

func newSyncCmd(e *env) *cobra.Command {
	var disconnect bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull workouts and heart-rate streams from Strava",
		Long: `sync connects to Strava (opening the OAuth flow on first use) and stores
new activities as workouts and their heart-rate streams as samples.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, _, err := e.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if disconnect {
				if err := st.ClearAuth(ctx); err != nil {
					return fmt.Errorf("clearing auth: %w", err)
				}
				fmt.Fprintln(out, "Strava disconnected")
				return nil
			}

			if err := e.cfg.ValidateStrava(); err != nil {
				return err
			}
			ts, err := auth.EnsureToken(ctx, e.oauthConfig(), st, out, e.logger)
			if err != nil {
				return fmt.Errorf("strava auth: %w", err)
			}

			svc := service.NewSyncService(strava.NewClient(ts), st, e.logger)
			progress := make(chan service.SyncProgress)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for p := range progress {
					e.logger.Info("sync progress",
						"phase", p.Phase,
						"completed", p.Completed,
						"total", p.Total,
						"activity", p.CurrentActivity,
					)
				}
			}()

			res, err := svc.SyncAll(ctx, progress)
			<-done
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s activities, %s workouts stored, %s heart-rate samples\n",
				humanize.Comma(int64(res.ActivitiesFetched)),
				humanize.Comma(int64(res.WorkoutsStored)),
				humanize.Comma(int64(res.SamplesInserted)))
			for _, err := range res.Errors {
				e.logger.Warn("sync item failed", "error", err)
			}
			short, daily := svc.RateLimitStatus()
			e.logger.Debug("strava rate limit", "short_remaining", short, "daily_remaining", daily)
			return nil
		},
	}

	cmd.Flags().BoolVar(&disconnect, "disconnect", false, "forget stored Strava credentials")
	return cmd
}

func (e *env) oauthConfig() *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     e.cfg.Strava.ClientID,
		ClientSecret: e.cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	})
}

// storedSyncService returns a sync service when Strava is configured and
// already connected, and nil otherwise. It never starts the browser flow.
func (e *env) storedSyncService(cmd *cobra.Command, st *store.Store) *service.SyncService {
	if e.cfg.ValidateStrava() != nil {
		return nil
	}
	a, err := st.GetAuth(cmd.Context())
	if err != nil {
		if !errors.Is(err, store.ErrNoAuth) {
			e.logger.Warn("reading strava auth", "error", err)
		}
		return nil
	}
	ts := auth.NewTokenSource(e.oauthConfig(), auth.TokenFromAuth(a), st)
	return service.NewSyncService(strava.NewClient(ts), st, e.logger)
}
