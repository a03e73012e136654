package history

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kapu/warmtalk-go/internal/constants"
	"github.com/kapu/warmtalk-go/internal/domain"
)

// Store is the subset of the cache layer the history list needs.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Archiver receives every finished translation for durable storage. Optional;
// archive failures never surface to the caller.
type Archiver interface {
	ArchiveTranslation(ctx context.Context, result *domain.TranslationResult, scenario domain.Scenario, createdAt time.Time) error
}

// Service keeps the most recent translations, newest first, capped at a fixed
// limit. The list is read and written wholesale under a single key, so a
// concurrent reader always sees a complete snapshot.
type Service struct {
	store    Store
	archiver Archiver
	key      string
	limit    int
	logger   *zap.Logger
}

// NewService builds the history list. A non-positive limit falls back to the
// default.
func NewService(store Store, archiver Archiver, limit int, logger *zap.Logger) *Service {
	if limit <= 0 {
		limit = constants.HistoryConfig.DefaultLimit
	}
	return &Service{
		store:    store,
		archiver: archiver,
		key:      constants.HistoryConfig.StorageKey,
		limit:    limit,
		logger:   logger,
	}
}

// List returns the stored entries, newest first. A missing or unreadable list
// degrades to empty: history is a convenience, never a request blocker.
func (s *Service) List(ctx context.Context) []domain.HistoryEntry {
	var entries []domain.HistoryEntry
	if err := s.store.Get(ctx, s.key, &entries); err != nil {
		s.logger.Warn("History unreadable, starting empty", zap.Error(err))
		return []domain.HistoryEntry{}
	}
	if entries == nil {
		return []domain.HistoryEntry{}
	}
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries
}

// Record prepends one finished translation and drops the oldest entries past
// the limit. The result is copied into the entry as-is; history never mutates
// a stored translation.
func (s *Service) Record(ctx context.Context, result *domain.TranslationResult, scenario domain.Scenario) error {
	entry := domain.HistoryEntry{
		Result:    *result,
		Scenario:  scenario,
		CreatedAt: time.Now().UTC(),
	}

	entries := append([]domain.HistoryEntry{entry}, s.List(ctx)...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	if err := s.store.Set(ctx, s.key, entries, constants.HistoryConfig.RedisTTL); err != nil {
		return err
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveTranslation(ctx, result, scenario, entry.CreatedAt); err != nil {
			s.logger.Warn("Archive write failed", zap.Error(err))
		}
	}

	return nil
}

// Clear drops the whole list.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Del(ctx, s.key)
}

// Limit reports the maximum number of retained entries.
func (s *Service) Limit() int {
	return s.limit
}
