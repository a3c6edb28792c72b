package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
)

// Manager owns the Badger connection and the stores built on it
type Manager struct {
	db     *BadgerDB
	alerts interfaces.AlertStorage
	logger arbor.ILogger
}

// NewManager opens the Badger database and builds the alert archive
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		alerts: NewAlertStorage(db, logger),
		logger: logger,
	}

	logger.Info().Str("path", config.Path).Msg("Badger alert archive initialized")

	return manager, nil
}

// AlertStorage returns the alert archive
func (m *Manager) AlertStorage() interfaces.AlertStorage {
	return m.alerts
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
