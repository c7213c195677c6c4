package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"healthscore/internal/fitfile"
	"healthscore/internal/healthexport"
	"healthscore/internal/store"
)

// ImportResult summarizes one imported file
type ImportResult struct {
	Path            string
	Source          string // fitfile.Source or healthexport.Source
	WorkoutID       string
	ActivityType    store.ActivityType
	WorkoutsStored  int
	SamplesInserted int
	SamplesByKind   map[store.SampleKind]int
	Skipped         int
	BatchID         string // FIT only
}

// Importer loads FIT activity files and Health Auto Export JSON files into
// the store
type Importer struct {
	store  *store.Store
	logger *slog.Logger
}

// NewImporter creates an importer writing to st
func NewImporter(st *store.Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: st, logger: logger}
}

// ImportFile decodes and stores the file at path. JSON files are read as
// Health Auto Export exports; everything else as FIT.
func (im *Importer) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		exp, err := healthexport.DecodeFile(path)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		res, err := im.ImportExport(ctx, exp)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", path, err)
		}
		res.Path = path
		return res, nil
	}

	act, err := fitfile.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	res, err := im.Import(ctx, act)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	res.Path = path
	return res, nil
}

// Import stores a decoded activity's workout and heart-rate samples.
// Re-importing the same activity is a no-op for samples already stored.
func (im *Importer) Import(ctx context.Context, act *fitfile.Activity) (*ImportResult, error) {
	w := act.Workout
	if err := im.store.UpsertWorkout(ctx, &w); err != nil {
		return nil, fmt.Errorf("storing workout: %w", err)
	}

	res := &ImportResult{
		Source:         fitfile.Source,
		WorkoutID:      w.ExternalID,
		ActivityType:   w.ActivityType,
		WorkoutsStored: 1,
		SamplesByKind:  map[store.SampleKind]int{},
	}
	if len(act.HeartRate) > 0 {
		batch, n, err := im.store.InsertSamples(ctx, act.HeartRate)
		if err != nil {
			return nil, fmt.Errorf("storing heart rate: %w", err)
		}
		res.BatchID, res.SamplesInserted = batch, n
		res.SamplesByKind[store.KindHeartRate] = n
	}

	if err := im.store.SetSyncTime(ctx, store.SyncKeyLastFITImport, time.Now()); err != nil {
		im.logger.Warn("could not record import time", "error", err)
	}

	im.logger.Info("imported activity",
		"workout", res.WorkoutID,
		"type", res.ActivityType,
		"samples", res.SamplesInserted,
	)
	return res, nil
}

// ImportExport stores a decoded Health Auto Export file: its workouts and
// every heart-rate, HRV, respiratory, SpO2 and sleep-stage sample. Samples
// already stored are skipped, so overlapping exports can be re-imported.
func (im *Importer) ImportExport(ctx context.Context, exp *healthexport.Export) (*ImportResult, error) {
	res := &ImportResult{
		Source:        healthexport.Source,
		ActivityType:  store.ActivityOther,
		SamplesByKind: map[store.SampleKind]int{},
		Skipped:       exp.Skipped,
	}

	for i := range exp.Workouts {
		if err := im.store.UpsertWorkout(ctx, &exp.Workouts[i]); err != nil {
			return nil, fmt.Errorf("storing workout: %w", err)
		}
		res.WorkoutsStored++
	}
	if len(exp.Workouts) == 1 {
		res.WorkoutID = exp.Workouts[0].ExternalID
		res.ActivityType = exp.Workouts[0].ActivityType
	}

	// one batch per kind so the per-kind counts come straight from the store
	byKind := map[store.SampleKind][]store.Sample{}
	for _, s := range exp.Samples {
		byKind[s.Kind] = append(byKind[s.Kind], s)
	}
	for kind, samples := range byKind {
		_, n, err := im.store.InsertSamples(ctx, samples)
		if err != nil {
			return nil, fmt.Errorf("storing %s: %w", kind, err)
		}
		res.SamplesByKind[kind] = n
		res.SamplesInserted += n
	}

	if err := im.store.SetSyncTime(ctx, store.SyncKeyLastHealthExport, time.Now()); err != nil {
		im.logger.Warn("could not record import time", "error", err)
	}

	im.logger.Info("imported health export",
		"workouts", res.WorkoutsStored,
		"samples", res.SamplesInserted,
		"skipped", res.Skipped,
	)
	return res, nil
}
