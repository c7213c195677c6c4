// Package healthexport reads Health Auto Export JSON files (the app's REST
// export format) into biometric samples and workouts.
package healthexport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"healthscore/internal/store"
)

// Source is the sample source recorded for Health Auto Export imports
const Source = "health_export"

// TimeLayout is the timestamp format used throughout the export
const TimeLayout = "2006-01-02 15:04:05 -0700"

// ErrNoData is returned when a file holds neither metrics nor workouts
var ErrNoData = errors.New("export has no metrics or workouts")

// Export is the decoded content of one export file
type Export struct {
	Samples  []store.Sample
	Workouts []store.Workout
	Skipped  int // data points that could not be read or are not scored
}

// Wire format
type (
	file struct {
		Data payload `json:"data"`
	}

	payload struct {
		Metrics  []metric  `json:"metrics"`
		Workouts []workout `json:"workouts"`
	}

	metric struct {
		Name  string      `json:"name"`
		Units string      `json:"units"`
		Data  []dataPoint `json:"data"`
	}

	// dataPoint covers the qty, Min/Avg/Max and sleep-stage shapes
	dataPoint struct {
		Date      string   `json:"date"`
		Qty       *float64 `json:"qty"`
		Avg       *float64 `json:"Avg"`
		StartDate string   `json:"startDate"`
		EndDate   string   `json:"endDate"`
		Value     string   `json:"value"`
	}

	quantity struct {
		Qty   float64 `json:"qty"`
		Units string  `json:"units"`
	}

	workout struct {
		ID                 string    `json:"id"`
		Name               string    `json:"name"`
		Start              string    `json:"start"`
		End                string    `json:"end"`
		Duration           float64   `json:"duration"` // seconds
		ActiveEnergyBurned *quantity `json:"activeEnergyBurned"`
	}
)

// metricKinds maps export metric names onto sample kinds
var metricKinds = map[string]store.SampleKind{
	"heart_rate":              store.KindHeartRate,
	"heart_rate_variability":  store.KindHRV,
	"respiratory_rate":        store.KindRespiratoryRate,
	"blood_oxygen_saturation": store.KindOxygenSaturation,
	"sleep_analysis":          store.KindSleepStage,
}

// sleepStages maps the export's stage names onto SleepStage codes
var sleepStages = map[string]store.SleepStage{
	"in bed": store.StageInBed,
	"inbed":  store.StageInBed,
	"asleep": store.StageAsleepUnspecified,
	"awake":  store.StageAwake,
	"core":   store.StageAsleepCore,
	"deep":   store.StageAsleepDeep,
	"rem":    store.StageAsleepREM,
}

// DecodeFile opens and decodes the export at path
func DecodeFile(path string) (*Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads an export from r. Unknown metrics and unreadable points are
// counted in Skipped rather than failing the file.
func Decode(r io.Reader) (*Export, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if len(f.Data.Metrics) == 0 && len(f.Data.Workouts) == 0 {
		return nil, ErrNoData
	}

	out := &Export{}
	for _, m := range f.Data.Metrics {
		kind, known := metricKinds[m.Name]
		if !known {
			out.Skipped += len(m.Data)
			continue
		}
		for _, dp := range m.Data {
			s, ok := sample(kind, m.Units, dp)
			if !ok {
				out.Skipped++
				continue
			}
			out.Samples = append(out.Samples, s)
		}
	}

	for _, w := range f.Data.Workouts {
		conv, ok := toWorkout(w)
		if !ok {
			out.Skipped++
			continue
		}
		out.Workouts = append(out.Workouts, conv)
	}
	return out, nil
}

func sample(kind store.SampleKind, units string, dp dataPoint) (store.Sample, bool) {
	if kind == store.KindSleepStage {
		return sleepSample(dp)
	}

	t, err := time.Parse(TimeLayout, dp.Date)
	if err != nil {
		return store.Sample{}, false
	}
	var v float64
	switch {
	case dp.Qty != nil:
		v = *dp.Qty
	case dp.Avg != nil:
		v = *dp.Avg
	default:
		return store.Sample{}, false
	}
	if kind == store.KindOxygenSaturation && (units == "" || units == "%") && v <= 1 {
		v *= 100 // fractional saturation
	}
	if v <= 0 {
		return store.Sample{}, false
	}
	return store.Sample{Kind: kind, Start: t, End: t, Quantity: v, Source: Source}, true
}

func sleepSample(dp dataPoint) (store.Sample, bool) {
	stage, ok := sleepStages[strings.ToLower(strings.TrimSpace(dp.Value))]
	if !ok {
		return store.Sample{}, false
	}
	start, err := time.Parse(TimeLayout, dp.StartDate)
	if err != nil {
		return store.Sample{}, false
	}
	end, err := time.Parse(TimeLayout, dp.EndDate)
	if err != nil || end.Before(start) {
		return store.Sample{}, false
	}
	return store.Sample{
		Kind:     store.KindSleepStage,
		Start:    start,
		End:      end,
		Quantity: float64(stage),
		Source:   Source,
	}, true
}

func toWorkout(w workout) (store.Workout, bool) {
	start, err := time.Parse(TimeLayout, w.Start)
	if err != nil {
		return store.Workout{}, false
	}
	end, err := time.Parse(TimeLayout, w.End)
	if err != nil || end.Before(start) {
		return store.Workout{}, false
	}

	id := w.ID
	if id == "" {
		id = fmt.Sprintf("%d", start.Unix())
	}
	out := store.Workout{
		ExternalID:   "hae:" + id,
		ActivityType: ActivityType(w.Name),
		Start:        start,
		End:          end,
		Source:       Source,
	}
	if w.Duration > 0 {
		d := w.Duration
		out.DurationSeconds = &d
	}
	if e := w.ActiveEnergyBurned; e != nil && e.Qty > 0 {
		kcal := e.Qty
		if strings.EqualFold(e.Units, "kJ") {
			kcal /= 4.184
		}
		out.TotalEnergyKcal = &kcal
	}
	return out, true
}

// ActivityType maps an exported workout name onto a workout type
func ActivityType(name string) store.ActivityType {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "traditional strength"):
		return store.ActivityTraditionalStrength
	case strings.Contains(n, "functional strength"), strings.Contains(n, "high intensity interval"):
		return store.ActivityFunctionalStrength
	case strings.Contains(n, "cross training"):
		return store.ActivityCrossTraining
	case strings.Contains(n, "run"):
		return store.ActivityRunning
	case strings.Contains(n, "cycling"), strings.Contains(n, "bike"):
		return store.ActivityCycling
	case strings.Contains(n, "walk"), strings.Contains(n, "hik"):
		return store.ActivityWalking
	default:
		return store.ActivityOther
	}
}
