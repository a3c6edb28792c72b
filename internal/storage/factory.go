package storage

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/common"
	"github.com/ternarybob/newswatch/internal/interfaces"
	"github.com/ternarybob/newswatch/internal/storage/badger"
	"github.com/ternarybob/newswatch/internal/storage/jsonfile"
)

// Manager combines the seen-set file with the optional Badger alert archive
type Manager struct {
	seen   interfaces.SeenStorage
	badger *badger.Manager
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.StorageManager = (*Manager)(nil)

// NewStorageManager creates the storage manager based on config.
// The alert archive is only opened when storage.badger.enabled is set.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	manager := &Manager{
		seen:   jsonfile.NewSeenStorage(config.Storage.SeenFile, logger),
		logger: logger,
	}

	if config.Storage.Badger.Enabled {
		badgerManager, err := badger.NewManager(logger, &config.Storage.Badger)
		if err != nil {
			return nil, err
		}
		manager.badger = badgerManager
	} else {
		logger.Debug().Msg("Alert archive disabled")
	}

	return manager, nil
}

// SeenStorage returns the seen-set storage
func (m *Manager) SeenStorage() interfaces.SeenStorage {
	return m.seen
}

// AlertStorage returns the alert archive, or nil when it is disabled
func (m *Manager) AlertStorage() interfaces.AlertStorage {
	if m.badger == nil {
		return nil
	}
	return m.badger.AlertStorage()
}

// Close releases the underlying stores
func (m *Manager) Close() error {
	if m.badger != nil {
		return m.badger.Close()
	}
	return nil
}
