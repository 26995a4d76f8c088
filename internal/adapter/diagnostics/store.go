package diagnostics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultRecentLimit caps Recent when no positive limit is given.
const DefaultRecentLimit = 50

// Store implements Recorder on top of GORM.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewStore creates a Store and migrates its table.
func NewStore(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&EntrySchema{}); err != nil {
		return nil, fmt.Errorf("failed to migrate diagnostics table: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// EntrySchema represents the database schema for the request_errors table.
type EntrySchema struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OccurredAt time.Time `gorm:"not null;index"`
	RequestID  string    `gorm:"size:64"`
	Method     string    `gorm:"size:16;not null"`
	URL        string    `gorm:"size:2048;not null"`
	Status     int       `gorm:"not null"`
	Kind       string    `gorm:"size:32;not null"`
	Message    string    `gorm:"size:512;not null"`
	Detail     string    `gorm:"size:2048"`
}

// TableName specifies the table name for the EntrySchema model.
func (EntrySchema) TableName() string {
	return "request_errors"
}

// Record inserts an entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	model := EntrySchema{
		OccurredAt: e.OccurredAt,
		RequestID:  e.RequestID,
		Method:     e.Method,
		URL:        e.URL,
		Status:     e.Status,
		Kind:       e.Kind,
		Message:    e.Message,
		Detail:     e.Detail,
	}

	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		s.log.Error("failed to record diagnostic entry", zap.String("url", e.URL), zap.Error(err))
		return fmt.Errorf("failed to record diagnostic entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var models []EntrySchema
	err := s.db.WithContext(ctx).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		s.log.Error("failed to list diagnostic entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list diagnostic entries: %w", err)
	}

	entries := make([]Entry, len(models))
	for i, m := range models {
		entries[i] = Entry{
			ID:         m.ID,
			OccurredAt: m.OccurredAt,
			RequestID:  m.RequestID,
			Method:     m.Method,
			URL:        m.URL,
			Status:     m.Status,
			Kind:       m.Kind,
			Message:    m.Message,
			Detail:     m.Detail,
		}
	}
	return entries, nil
}
