package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/newswatch/internal/models"
)

// ErrNoSeenState is returned when no persisted seen-set exists yet (missing or empty file)
var ErrNoSeenState = errors.New("no persisted seen state")

// SeenStorage persists the full set of processed article URLs
type SeenStorage interface {
	// LoadSeen returns every persisted URL. Returns ErrNoSeenState when nothing has been saved yet.
	LoadSeen(ctx context.Context) ([]string, error)

	// SaveSeen overwrites the persisted set with urls
	SaveSeen(ctx context.Context, urls []string) error

	// Location describes where the set is persisted (for logging)
	Location() string
}

// AlertStorage archives articles that were shown to the user
type AlertStorage interface {
	SaveAlert(ctx context.Context, alert *models.AlertRecord) error
	GetAlert(ctx context.Context, id string) (*models.AlertRecord, error)

	// ListRecent returns up to limit alerts, newest first. limit <= 0 returns all.
	ListRecent(ctx context.Context, limit int) ([]*models.AlertRecord, error)
	ListByCycle(ctx context.Context, cycleID string) ([]*models.AlertRecord, error)
	CountAlerts(ctx context.Context) (int, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	SeenStorage() SeenStorage
	AlertStorage() AlertStorage
	Close() error
}
