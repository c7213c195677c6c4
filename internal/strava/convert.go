package strava

import (
	"fmt"
	"time"

	"healthscore/internal/store"
)

// Source is the sample source recorded for Strava data
const Source = "strava"

const kilojoulesPerKcal = 4.184

// ActivityType maps a Strava activity type onto a workout type
func ActivityType(a Activity) store.ActivityType {
	t := a.SportType
	if t == "" {
		t = a.Type
	}
	switch t {
	case "WeightTraining":
		return store.ActivityTraditionalStrength
	case "Crossfit":
		return store.ActivityCrossTraining
	case "Workout", "HighIntensityIntervalTraining":
		return store.ActivityFunctionalStrength
	case "Run", "TrailRun", "VirtualRun":
		return store.ActivityRunning
	case "Ride", "VirtualRide", "MountainBikeRide", "GravelRide", "EBikeRide":
		return store.ActivityCycling
	case "Walk", "Hike":
		return store.ActivityWalking
	default:
		return store.ActivityOther
	}
}

// ExternalID returns the store key for a Strava activity
func ExternalID(id int64) string {
	return fmt.Sprintf("strava:%d", id)
}

// ToWorkout converts a Strava activity summary into a workout
func ToWorkout(a Activity) store.Workout {
	w := store.Workout{
		ExternalID:   ExternalID(a.ID),
		ActivityType: ActivityType(a),
		Start:        a.StartDate,
		End:          a.StartDate.Add(time.Duration(a.ElapsedTime) * time.Second),
		Source:       Source,
	}

	if a.MovingTime > 0 {
		secs := float64(a.MovingTime)
		w.DurationSeconds = &secs
	}

	switch {
	case a.Calories > 0:
		kcal := a.Calories
		w.TotalEnergyKcal = &kcal
	case a.Kilojoules > 0:
		kcal := a.Kilojoules / kilojoulesPerKcal
		w.TotalEnergyKcal = &kcal
	}
	return w
}

// HeartRateSamples converts an activity's heart-rate stream into samples.
// Each sample ends at the next stream point; the last is instantaneous.
func HeartRateSamples(a Activity, s *Streams) []store.Sample {
	if !s.HasHeartrate() || s.Len() == 0 {
		return nil
	}

	n := s.Len()
	if len(s.Heartrate.Data) < n {
		n = len(s.Heartrate.Data)
	}

	samples := make([]store.Sample, 0, n)
	for i := 0; i < n; i++ {
		bpm := s.Heartrate.Data[i]
		if bpm <= 0 {
			continue
		}
		start := a.StartDate.Add(time.Duration(s.Time.Data[i]) * time.Second)
		end := start
		if i+1 < n {
			end = a.StartDate.Add(time.Duration(s.Time.Data[i+1]) * time.Second)
		}
		samples = append(samples, store.Sample{
			Kind:     store.KindHeartRate,
			Start:    start,
			End:      end,
			Quantity: float64(bpm),
			Source:   Source,
		})
	}
	return samples
}
