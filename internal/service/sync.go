package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"healthscore/internal/store"
	"healthscore/internal/strava"
)

// StravaClient is the part of the Strava API the sync uses
type StravaClient interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
	GetHeartRateStream(ctx context.Context, activityID int64) (*strava.Streams, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncService pulls workouts and heart-rate streams from Strava into the store
type SyncService struct {
	client StravaClient
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(client StravaClient, st *store.Store, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{client: client, store: st, logger: logger, now: time.Now}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "workouts", "heart_rate"
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	WorkoutsStored    int
	StreamsFetched    int
	SamplesInserted   int
	Errors            []error
}

// SyncAll performs a full sync: workouts -> heart-rate streams.
// progress is closed when the sync returns.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}
	started := s.now()

	if err := s.syncWorkouts(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing workouts: %w", err)
	}

	if err := s.syncHeartRate(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing heart rate: %w", err)
	}

	if err := s.store.SetSyncTime(ctx, store.SyncKeyLastStravaSync, started); err != nil {
		return result, fmt.Errorf("saving sync time: %w", err)
	}

	s.logger.Info("strava sync complete",
		"fetched", result.ActivitiesFetched,
		"workouts", result.WorkoutsStored,
		"samples", result.SamplesInserted,
		"errors", len(result.Errors),
	)
	return result, nil
}

// syncWorkouts pages through activities since the last sync, stores each as
// a workout and queues the heart-rate stream of those that recorded one
func (s *SyncService) syncWorkouts(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	after, err := s.store.GetSyncTime(ctx, store.SyncKeyLastStravaSync)
	if err != nil {
		s.logger.Warn("unreadable sync state, starting fresh", "error", err)
		after = time.Time{}
	}
	if after.IsZero() {
		after = s.now().AddDate(0, 0, -InitialSyncDays)
	}

	report(progress, SyncProgress{Phase: "workouts"})

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		activities, err := s.client.GetActivities(ctx, after, page, StravaPageSize)
		if err != nil {
			return fmt.Errorf("fetching page %d: %w", page, err)
		}
		result.ActivitiesFetched += len(activities)

		for _, a := range activities {
			w := strava.ToWorkout(a)
			if err := s.store.UpsertWorkout(ctx, &w); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.WorkoutsStored++
			if !a.HasHeartrate {
				continue
			}
			if err := s.store.QueueStream(ctx, w.ExternalID, a.ID); err != nil {
				result.Errors = append(result.Errors, err)
			}
		}

		report(progress, SyncProgress{
			Phase:     "workouts",
			Total:     result.ActivitiesFetched,
			Completed: result.WorkoutsStored,
		})

		if len(activities) < StravaPageSize {
			break
		}
	}
	return nil
}

// syncHeartRate fetches queued heart-rate streams, at most StreamBatchLimit
// per run, and stores them as samples. Failed fetches stay queued until they
// have failed MaxStreamAttempts times.
func (s *SyncService) syncHeartRate(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	pending, err := s.store.PendingStreams(ctx, StreamBatchLimit, MaxStreamAttempts)
	if err != nil {
		return fmt.Errorf("loading queued streams: %w", err)
	}
	if n, err := s.store.CountPendingStreams(ctx, MaxStreamAttempts); err == nil && n > len(pending) {
		s.logger.Info("deferring heart-rate streams to the next sync", "pending", n-len(pending))
	}

	for i, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		report(progress, SyncProgress{
			Phase:           "heart_rate",
			Total:           len(pending),
			Completed:       i,
			CurrentActivity: p.Workout.ExternalID,
		})

		streams, err := s.client.GetHeartRateStream(ctx, p.RemoteID)
		if err != nil {
			s.streamFailed(ctx, p, err, result)
			continue
		}
		result.StreamsFetched++

		act := strava.Activity{ID: p.RemoteID, StartDate: p.Workout.Start}
		if samples := strava.HeartRateSamples(act, streams); len(samples) > 0 {
			_, n, err := s.store.InsertSamples(ctx, samples)
			if err != nil {
				s.streamFailed(ctx, p, fmt.Errorf("saving samples: %w", err), result)
				continue
			}
			result.SamplesInserted += n
		}
		if err := s.store.MarkStreamSynced(ctx, p.Workout.ExternalID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking %s synced: %w", p.Workout.ExternalID, err))
		}
	}

	report(progress, SyncProgress{
		Phase:     "heart_rate",
		Total:     len(pending),
		Completed: len(pending),
	})
	return nil
}

func (s *SyncService) streamFailed(ctx context.Context, p store.PendingStream, cause error, result *SyncResult) {
	result.Errors = append(result.Errors, fmt.Errorf("activity %d: %w", p.RemoteID, cause))
	if err := s.store.MarkStreamFailed(ctx, p.Workout.ExternalID, cause); err != nil {
		s.logger.Warn("recording stream failure", "workout", p.Workout.ExternalID, "error", err)
	}
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

func report(progress chan<- SyncProgress, p SyncProgress) {
	if progress != nil {
		progress <- p
	}
}
