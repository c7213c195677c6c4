package strava

import "time"

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID               int64     `json:"id"`
	Athlete          Athlete   `json:"athlete"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	Timezone         string    `json:"timezone"`
	MovingTime       int       `json:"moving_time"`       // seconds
	ElapsedTime      int       `json:"elapsed_time"`      // seconds
	Kilojoules       float64   `json:"kilojoules"`        // work, not energy burned
	Calories         float64   `json:"calories"`          // only on detailed activities
	AverageHeartrate float64   `json:"average_heartrate"` // bpm
	MaxHeartrate     float64   `json:"max_heartrate"`     // bpm
	HasHeartrate     bool      `json:"has_heartrate"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Streams represents the heart-rate stream data for an activity.
// Strava returns streams keyed by type when key_by_type=true
type Streams struct {
	Time      *StreamData[int] `json:"time"`      // seconds from activity start
	Heartrate *StreamData[int] `json:"heartrate"` // bpm
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && s.Heartrate != nil && len(s.Heartrate.Data) > 0
}
