package dedup

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/newswatch/internal/interfaces"
)

// Service keeps the set of processed article URLs in memory and mirrors it to SeenStorage.
// The monitor loop is the only writer; the mutex guards the final Flush from the shutdown goroutine.
type Service struct {
	storage interfaces.SeenStorage
	logger  arbor.ILogger

	mu   sync.Mutex
	seen map[string]struct{}
}

// Compile-time assertion
var _ interfaces.DedupStore = (*Service)(nil)

// NewService creates a dedup store over storage. Call Load before use.
func NewService(storage interfaces.SeenStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		seen:    make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the persisted one.
// Missing, unreadable or malformed state yields an empty set; Load never fails.
func (s *Service) Load(ctx context.Context) int {
	urls, err := s.storage.LoadSeen(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen = make(map[string]struct{}, len(urls))

	if errors.Is(err, interfaces.ErrNoSeenState) {
		s.logger.Info().
			Str("location", s.storage.Location()).
			Msg("No seen articles recorded yet - starting fresh")
		return 0
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("location", s.storage.Location()).
			Msg("Could not load seen articles - starting with an empty set")
		return 0
	}

	for _, url := range urls {
		s.seen[url] = struct{}{}
	}

	s.logger.Info().
		Int("count", len(s.seen)).
		Str("location", s.storage.Location()).
		Msg("Loaded seen articles")

	return len(s.seen)
}

// IsNew reports whether url has not been processed yet
func (s *Service) IsNew(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[url]
	return !ok
}

// MarkSeen records url and persists the whole set.
// Returns false without touching storage when url was already present.
// A persistence failure is logged; the URL stays recorded in memory.
func (s *Service) MarkSeen(ctx context.Context, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}

	if err := s.storage.SaveSeen(ctx, s.snapshotLocked()); err != nil {
		s.logger.Warn().
			Err(err).
			Str("url", url).
			Str("location", s.storage.Location()).
			Msg("Failed to persist seen articles")
	}

	return true
}

// Count returns the number of recorded URLs
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.seen)
}

// Flush writes the current set to storage
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveSeen(ctx, s.snapshotLocked()); err != nil {
		s.logger.Error().
			Err(err).
			Str("location", s.storage.Location()).
			Msg("Failed to flush seen articles")
		return err
	}

	s.logger.Debug().
		Int("count", len(s.seen)).
		Msg("Seen articles flushed")
	return nil
}

// Snapshot returns the recorded URLs sorted
func (s *Service) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Service) snapshotLocked() []string {
	urls := make([]string, 0, len(s.seen))
	for url := range s.seen {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}
