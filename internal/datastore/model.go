package datastore

import (
	"time"

	"github.com/camsift/camsift/internal/event"
)

// Review states of a stored event.
const (
	ReviewPending   = "pending"
	ReviewConfirmed = "confirmed"
	ReviewRejected  = "rejected"
)

// EventRecord is the persisted form of a detected event plus its review
// state. The pipeline writes records as pending; the review workflow moves
// them to confirmed or rejected.
type EventRecord struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	EventID         string `gorm:"uniqueIndex;not null"`
	ChunkID         string `gorm:"index;not null"`
	TrackID         int    `gorm:"index"`
	StartFrame      int
	EndFrame        int
	StartTime       float64
	EndTime         float64
	DurationSeconds float64
	DetectionCount  int
	MeanConfidence  float64
	MinConfidence   float64
	MaxConfidence   float64
	Movement        float64

	ReviewState string `gorm:"index;default:pending"`
	Label       string
	NeedsReview bool
}

// recordFromEvent converts a pipeline event into a pending record.
func recordFromEvent(ev *event.Event) EventRecord {
	return EventRecord{
		EventID:         ev.EventID,
		ChunkID:         ev.ChunkID,
		TrackID:         ev.TrackID,
		StartFrame:      ev.StartFrame,
		EndFrame:        ev.EndFrame,
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		DurationSeconds: ev.DurationSeconds,
		DetectionCount:  ev.DetectionCount,
		MeanConfidence:  ev.MeanConfidence,
		MinConfidence:   ev.MinConfidence,
		MaxConfidence:   ev.MaxConfidence,
		Movement:        ev.Movement,
		ReviewState:     ReviewPending,
	}
}
