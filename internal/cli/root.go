package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"healthscore/internal/config"
	"healthscore/internal/service"
	"healthscore/internal/store"
)

// env is the state shared by every command once the root pre-run has loaded
// configuration
type env struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// NewRootCmd builds the healthscore command tree
func NewRootCmd() *cobra.Command {
	e := &env{now: time.Now}

	root := &cobra.Command{
		Use:   "healthscore",
		Short: "Daily strain, recovery, stress and sleep scores",
		Long: `healthscore turns heart-rate, HRV, respiratory, SpO2 and sleep samples
into daily Strain (0-21), Recovery (0-100%), Stress (0-3) and
Sleep Performance (0-100%) scores.

Samples come from FIT files (healthscore import) or Strava (healthscore sync).
Run without a subcommand to open the dashboard.`,
		SilenceUsage:      true,
		PersistentPreRunE: e.preRun,
		PersistentPostRun: e.postRun,
		RunE:              e.runDashboard,
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file (default ~/.healthscore/config.json)")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newScoreCmd(e),
		newTrendCmd(e),
		newImportCmd(e),
		newSyncCmd(e),
		newDashboardCmd(e),
		newConfigCmd(e),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (e *env) preRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadOrDefault(e.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	e.cfg = cfg

	level := parseLevel(cfg.Logging.Level)
	if e.verbose {
		level = slog.LevelDebug
	}
	e.logger = newLogger(cmd.ErrOrStderr(), level)

	info := commandContext{correlationID: uuid.New(), startedAt: e.now()}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
	e.logger.Debug("command start",
		"command", cmd.CommandPath(),
		"correlation_id", info.correlationID.String(),
	)
	return nil
}

func (e *env) postRun(cmd *cobra.Command, _ []string) {
	info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
	if !ok || e.logger == nil {
		return
	}
	e.logger.Debug("command end",
		"command", cmd.CommandPath(),
		"correlation_id", info.correlationID.String(),
		"duration_ms", e.now().Sub(info.startedAt).Milliseconds(),
	)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseLevel maps a config level name onto slog; unknown names mean info
func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// openStore opens the configured database and checks whether it can serve
// samples
func (e *env) openStore(ctx context.Context) (*store.Store, service.InitState, error) {
	st, err := store.Open(e.cfg.Storage.Path)
	if err != nil {
		return nil, service.InitState{}, fmt.Errorf("opening database: %w", err)
	}
	state := service.Setup(ctx, st)
	if !state.ProviderAvailable {
		e.logger.Warn("sample store unavailable", "reason", state.Reason)
	}
	return st, state, nil
}

func (e *env) scoreService(st *store.Store) *service.ScoreService {
	return service.NewScoreService(st, e.cfg.Resolve(), e.logger)
}

// parseDate reads a YYYY-MM-DD flag in local time; empty means today
func (e *env) parseDate(s string) (time.Time, error) {
	if s == "" {
		return e.now(), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	if d.After(e.now()) {
		return time.Time{}, errors.New("date is in the future")
	}
	return d, nil
}
