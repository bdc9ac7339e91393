// Package datastore persists sessions and the transients detected
// within them, via gorm against either sqlite or mysql.
package datastore

import "time"

// Session is one audio stream fed through internal/engine, from the
// first chunk submitted to internal/detfunc.Core through termination.
type Session struct {
	ID              string `gorm:"primaryKey"`
	AudioSourcePath string
	Samplerate      int
	StartedAt       time.Time
	EndedAt         *time.Time
}

// TransientRecord is one onset/offset internal/transient.Detect found in
// a session's detection function.
type TransientRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	SessionID  string `gorm:"index"`
	Kind       string // "onset" or "offset"
	Index      int    `gorm:"column:sample_index"`
	Fitness    float64
	OccurredAt time.Time
}
