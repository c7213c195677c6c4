// Package fitfile turns Garmin/ANT FIT activity files into heart-rate
// samples and a workout record.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"healthscore/internal/store"
)

// ErrNoSession is returned when an activity file has no session message
var ErrNoSession = errors.New("activity file has no session message")

// Source is the sample source recorded for FIT imports
const Source = "fit"

// Activity is the decoded content of one FIT activity file
type Activity struct {
	Workout   store.Workout
	HeartRate []store.Sample
}

// DecodeFile opens and decodes the FIT file at path
func DecodeFile(path string) (*Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Base(path))
}

// Decode reads a FIT activity from r. name is used to build the workout's
// external id when the file carries no usable start time.
func Decode(r io.Reader, name string) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}
	return FromActivity(activity, name)
}

// FromActivity converts a decoded FIT activity
func FromActivity(activity *fit.ActivityFile, name string) (*Activity, error) {
	if activity == nil || len(activity.Sessions) == 0 || activity.Sessions[0] == nil {
		return nil, ErrNoSession
	}

	samples := heartRateSamples(activity.Records)
	w := workoutFromSession(activity.Sessions[0], name)
	if w.Start.IsZero() && len(samples) > 0 {
		w.Start = samples[0].Start
		w.End = samples[len(samples)-1].End
		w.ExternalID = externalID(w.Start, name)
	}

	return &Activity{Workout: w, HeartRate: samples}, nil
}

// heartRateSamples emits one sample per record with a valid heart rate.
// Each sample ends where the next valid one starts.
func heartRateSamples(records []*fit.RecordMsg) []store.Sample {
	type reading struct {
		ts  time.Time
		bpm float64
	}

	var readings []reading
	for _, rec := range records {
		if rec == nil || rec.HeartRate == math.MaxUint8 || rec.HeartRate == 0 {
			continue
		}
		ts := validTimeOrZero(rec.Timestamp)
		if ts.IsZero() {
			continue
		}
		readings = append(readings, reading{ts: ts, bpm: float64(rec.HeartRate)})
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].ts.Before(readings[j].ts)
	})

	samples := make([]store.Sample, 0, len(readings))
	for i, r := range readings {
		end := r.ts
		if i+1 < len(readings) {
			end = readings[i+1].ts
		}
		samples = append(samples, store.Sample{
			Kind:     store.KindHeartRate,
			Start:    r.ts,
			End:      end,
			Quantity: r.bpm,
			Source:   Source,
		})
	}
	return samples
}

func workoutFromSession(session *fit.SessionMsg, name string) store.Workout {
	start := validTimeOrZero(session.StartTime)
	end := validTimeOrZero(session.Timestamp)

	w := store.Workout{
		ExternalID:   externalID(start, name),
		ActivityType: activityType(session.Sport, session.SubSport),
		Start:        start,
		End:          end,
		Source:       Source,
	}

	if secs := safePositive(session.GetTotalTimerTimeScaled()); secs > 0 {
		w.DurationSeconds = &secs
		if w.End.IsZero() && !w.Start.IsZero() {
			w.End = w.Start.Add(time.Duration(secs * float64(time.Second)))
		}
	}
	if session.TotalCalories != math.MaxUint16 && session.TotalCalories > 0 {
		kcal := float64(session.TotalCalories)
		w.TotalEnergyKcal = &kcal
	}
	return w
}

func activityType(sport fit.Sport, sub fit.SubSport) store.ActivityType {
	switch sub {
	case fit.SubSportStrengthTraining:
		return store.ActivityTraditionalStrength
	case fit.SubSportCardioTraining:
		return store.ActivityFunctionalStrength
	}
	switch sport {
	case fit.SportTraining:
		return store.ActivityCrossTraining
	case fit.SportRunning:
		return store.ActivityRunning
	case fit.SportCycling:
		return store.ActivityCycling
	case fit.SportWalking:
		return store.ActivityWalking
	}
	return store.ActivityOther
}

func externalID(start time.Time, name string) string {
	if start.IsZero() {
		return "fit:" + name
	}
	return fmt.Sprintf("fit:%d", start.Unix())
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func safePositive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
