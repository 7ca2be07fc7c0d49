// Package datastore persists detected events for the review workflow.
package datastore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gorm.io/driver/sqlite"

	"github.com/camsift/camsift/internal/errors"
	"github.com/camsift/camsift/internal/event"
	"github.com/camsift/camsift/internal/logging"
)

// Interface is the storage abstraction used by the pipeline and the review
// commands.
type Interface interface {
	Open() error
	Close() error
	SaveEvents(events []event.Event) error
	GetEvent(eventID string) (*EventRecord, error)
	GetAllEvents() ([]EventRecord, error)
	GetEventsByChunk(chunkID string) ([]EventRecord, error)
	SetReview(eventID, state, label string) error
	CountByReviewState() (map[string]int, error)
}

// SQLiteStore implements Interface on a local SQLite database.
type SQLiteStore struct {
	path   string
	db     *gorm.DB
	logger *slog.Logger
}

// NewSQLite creates a store backed by the database file at path.
func NewSQLite(path string, log *slog.Logger) *SQLiteStore {
	if log == nil {
		log = logging.ForService("datastore")
	}
	return &SQLiteStore{path: path, logger: log}
}

// Open opens the database and migrates the schema.
func (s *SQLiteStore) Open() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.New(fmt.Errorf("creating database directory: %w", err)).
			Component("datastore").
			Category(errors.CategoryFileIO).
			FileContext(s.path).
			Build()
	}

	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return errors.New(fmt.Errorf("opening database: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			FileContext(s.path).
			Build()
	}

	if err := db.AutoMigrate(&EventRecord{}); err != nil {
		return errors.New(fmt.Errorf("migrating schema: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			FileContext(s.path).
			Build()
	}

	s.db = db
	s.logger.Info("event database ready", "path", s.path)
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.New(fmt.Errorf("accessing database handle: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return sqlDB.Close()
}

// SaveEvents inserts events as pending records. Events already present, by
// event ID, are left untouched so re-runs stay idempotent.
func (s *SQLiteStore) SaveEvents(events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]EventRecord, 0, len(events))
	for i := range events {
		records = append(records, recordFromEvent(&events[i]))
	}

	for i := range records {
		res := s.db.Where("event_id = ?", records[i].EventID).FirstOrCreate(&records[i])
		if res.Error != nil {
			return errors.New(fmt.Errorf("saving event %s: %w", records[i].EventID, res.Error)).
				Component("datastore").
				Category(errors.CategoryDatabase).
				Build()
		}
	}

	s.logger.Debug("events saved", "count", len(records))
	return nil
}

// GetEvent returns the record with the given event ID.
func (s *SQLiteStore) GetEvent(eventID string) (*EventRecord, error) {
	var record EventRecord
	if err := s.db.Where("event_id = ?", eventID).First(&record).Error; err != nil {
		return nil, errors.New(fmt.Errorf("loading event %s: %w", eventID, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return &record, nil
}

// GetAllEvents returns every record ordered by chunk, track and start frame.
func (s *SQLiteStore) GetAllEvents() ([]EventRecord, error) {
	var records []EventRecord
	err := s.db.
		Order("chunk_id, track_id, start_frame").
		Find(&records).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("loading events: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// GetEventsByChunk returns the records of one chunk ordered by track and
// start frame.
func (s *SQLiteStore) GetEventsByChunk(chunkID string) ([]EventRecord, error) {
	var records []EventRecord
	err := s.db.
		Where("chunk_id = ?", chunkID).
		Order("track_id, start_frame").
		Find(&records).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("loading events for chunk %s: %w", chunkID, err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return records, nil
}

// SetReview updates the review state and label of one event.
func (s *SQLiteStore) SetReview(eventID, state, label string) error {
	switch state {
	case ReviewPending, ReviewConfirmed, ReviewRejected:
	default:
		return errors.Newf("invalid review state %q", state).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	res := s.db.Model(&EventRecord{}).
		Where("event_id = ?", eventID).
		Updates(map[string]any{
			"review_state": state,
			"label":        label,
			"needs_review": false,
		})
	if res.Error != nil {
		return errors.New(fmt.Errorf("updating review for event %s: %w", eventID, res.Error)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	if res.RowsAffected == 0 {
		return errors.Newf("event %s not found", eventID).
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// CountByReviewState returns record counts grouped by review state.
func (s *SQLiteStore) CountByReviewState() (map[string]int, error) {
	type row struct {
		ReviewState string
		Count       int
	}
	var rows []row
	err := s.db.Model(&EventRecord{}).
		Select("review_state, count(*) as count").
		Group("review_state").
		Find(&rows).Error
	if err != nil {
		return nil, errors.New(fmt.Errorf("counting events: %w", err)).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.ReviewState] = r.Count
	}
	return counts, nil
}
