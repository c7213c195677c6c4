package service

import (
	"context"
	"time"

	"healthscore/internal/store"
)

// SampleProvider supplies raw biometric readings and workouts for a date range.
// *store.Store implements it.
type SampleProvider interface {
	Samples(ctx context.Context, kind store.SampleKind, start, end time.Time) ([]store.Sample, error)
	Workouts(ctx context.Context, start, end time.Time) ([]store.Workout, error)
	Ping(ctx context.Context) error
}

// InitState records whether the sample provider was reachable at setup.
// It is returned by Setup and passed into every scoring call.
type InitState struct {
	ProviderAvailable bool
	CheckedAt         time.Time
	Reason            string
}

// Setup checks the provider and returns the resulting InitState
func Setup(ctx context.Context, p SampleProvider) InitState {
	state := InitState{CheckedAt: time.Now()}
	if p == nil {
		state.Reason = "no sample provider configured"
		return state
	}

	ctx, cancel := context.WithTimeout(ctx, setupTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		state.Reason = err.Error()
		return state
	}

	state.ProviderAvailable = true
	return state
}
