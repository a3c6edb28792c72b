package models

import "time"

// AlertRecord is an archived copy of an article that was shown to the user
type AlertRecord struct {
	ID          string    `json:"id"`
	CycleID     string    `json:"cycle_id" badgerhold:"index"`
	Article     Article   `json:"article"`
	Analysis    Analysis  `json:"analysis"`
	SoundPlayed bool      `json:"sound_played"`
	FirstRun    bool      `json:"first_run"`
	DisplayedAt time.Time `json:"displayed_at"`
}

// CycleSummary captures the counters of a single polling cycle
type CycleSummary struct {
	CycleID   string
	FirstRun  bool
	Fetched   int
	New       int
	Displayed int
	Failed    int
	Sounds    int
	Duration  time.Duration
}
