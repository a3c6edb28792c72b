package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrAlertNotFound is returned when no alert exists for an ID
var ErrAlertNotFound = errors.New("alert not found")

// AlertStorage archives displayed alerts in Badger
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{
		db:     db,
		logger: logger,
	}
}

// SaveAlert inserts or replaces an alert. Missing ID and timestamp are filled in.
func (s *AlertStorage) SaveAlert(ctx context.Context, alert *models.AlertRecord) error {
	if alert == nil {
		return fmt.Errorf("alert is nil")
	}
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.DisplayedAt.IsZero() {
		alert.DisplayedAt = time.Now()
	}

	if err := s.db.Store().Upsert(alert.ID, alert); err != nil {
		return fmt.Errorf("failed to save alert %s: %w", alert.ID, err)
	}

	s.logger.Debug().
		Str("alert_id", alert.ID).
		Str("cycle_id", alert.CycleID).
		Str("url", alert.Article.URL).
		Msg("Alert archived")

	return nil
}

// GetAlert returns the alert with the given ID
func (s *AlertStorage) GetAlert(ctx context.Context, id string) (*models.AlertRecord, error) {
	var alert models.AlertRecord
	err := s.db.Store().Get(id, &alert)
	if err == badgerhold.ErrNotFound {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert %s: %w", id, err)
	}
	return &alert, nil
}

// ListRecent returns up to limit alerts, newest first. limit <= 0 returns every alert.
func (s *AlertStorage) ListRecent(ctx context.Context, limit int) ([]*models.AlertRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("DisplayedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var alerts []models.AlertRecord
	if err := s.db.Store().Find(&alerts, query); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	return toPointers(alerts), nil
}

// ListByCycle returns the alerts of one cycle, oldest first
func (s *AlertStorage) ListByCycle(ctx context.Context, cycleID string) ([]*models.AlertRecord, error) {
	var alerts []models.AlertRecord
	err := s.db.Store().Find(&alerts, badgerhold.Where("CycleID").Eq(cycleID).Index("CycleID").SortBy("DisplayedAt"))
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts for cycle %s: %w", cycleID, err)
	}

	return toPointers(alerts), nil
}

// CountAlerts returns the number of archived alerts
func (s *AlertStorage) CountAlerts(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.AlertRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return int(count), nil
}

func toPointers(alerts []models.AlertRecord) []*models.AlertRecord {
	result := make([]*models.AlertRecord, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	return result
}
