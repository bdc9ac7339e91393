package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/onsetgo/correntropy/internal/events"
	"github.com/onsetgo/correntropy/internal/logging"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Store is the gorm-backed session/transient repository.
type Store struct {
	db *gorm.DB
}

// Open connects to driver ("sqlite" or "mysql") at dsn and migrates the
// schema. Mirrors the teacher's driver-selection-by-string pattern.
func Open(driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, wrapErr("datastore", fmt.Sprintf("unsupported driver %q", driver), fmt.Errorf("must be sqlite or mysql"))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, wrapErr("datastore", "failed to open database", err)
	}
	if err := db.AutoMigrate(&Session{}, &TransientRecord{}); err != nil {
		return nil, wrapErr("datastore", "failed to migrate schema", err)
	}

	logging.ForService("datastore").Debug("store opened", "driver", driver)
	return &Store{db: db}, nil
}

// CreateSession inserts a new session row and returns its generated ID.
func (s *Store) CreateSession(audioSourcePath string, samplerate int) (string, error) {
	session := Session{
		ID:              uuid.NewString(),
		AudioSourcePath: audioSourcePath,
		Samplerate:      samplerate,
		StartedAt:       time.Now(),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return "", wrapErr("datastore", "failed to create session", err)
	}
	return session.ID, nil
}

// EndSession stamps a session's EndedAt.
func (s *Store) EndSession(sessionID string) error {
	now := time.Now()
	res := s.db.Model(&Session{}).Where("id = ?", sessionID).Update("ended_at", &now)
	if res.Error != nil {
		return wrapErr("datastore", "failed to end session", res.Error)
	}
	return nil
}

// SaveTransient persists one detected onset/offset.
func (s *Store) SaveTransient(sessionID, kind string, index int, fitness float64) error {
	rec := TransientRecord{
		SessionID:  sessionID,
		Kind:       kind,
		Index:      index,
		Fitness:    fitness,
		OccurredAt: time.Now(),
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return wrapErr("datastore", "failed to save transient", err)
	}
	return nil
}

// ListSessions returns every session, most recent first.
func (s *Store) ListSessions() ([]Session, error) {
	var sessions []Session
	if err := s.db.Order("started_at desc").Find(&sessions).Error; err != nil {
		return nil, wrapErr("datastore", "failed to list sessions", err)
	}
	return sessions, nil
}

// ListTransients returns every transient recorded for a session, in
// detection order.
func (s *Store) ListTransients(sessionID string) ([]TransientRecord, error) {
	var records []TransientRecord
	if err := s.db.Where("session_id = ?", sessionID).Order("sample_index asc, occurred_at asc").Find(&records).Error; err != nil {
		return nil, wrapErr("datastore", "failed to list transients", err)
	}
	return records, nil
}

// EventConsumer adapts Store into an events.Consumer so cmd/detect can
// wire it straight into the event bus alongside notify consumers.
type EventConsumer struct {
	Store *Store
}

func (EventConsumer) Name() string { return "datastore" }

func (c EventConsumer) Process(_ context.Context, event events.TransientEvent) error {
	return c.Store.SaveTransient(event.SessionID, event.Kind.String(), event.Index, event.Fitness)
}
