package service

import "time"

const (
	// Provider checks
	setupTimeout = 5 * time.Second

	// Strava paging
	StravaPageSize = 100

	// Streams fetched per sync to stay inside the 15-minute rate limit
	StreamBatchLimit = 50

	// Failed stream fetches before a workout is given up on
	MaxStreamAttempts = 3

	// Days of history pulled on the first sync
	InitialSyncDays = 60

	// Default window for the trends screen
	DefaultTrendDays = 14

	// Prior nights considered for sleep debt
	SleepDebtNights = 3
)
