// Package store keeps the most recent usage batches in memory and, when a
// history backend is configured, persists every batch.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// ErrHistoryDisabled is returned by History when no backend is configured.
var ErrHistoryDisabled = errors.New("batch history is disabled")

// HistoryBackend persists batches. *db.DB implements it.
type HistoryBackend interface {
	SaveBatch(ctx context.Context, batch *models.UsageBatch) (int64, error)
	ListBatches(ctx context.Context, accountID string, limit int) ([]models.UsageBatch, error)
}

// Store holds the process-wide latest batch and the latest batch per
// account. Writers race on the process-wide slot: the last Put wins.
type Store struct {
	mu        sync.RWMutex
	latest    *models.UsageBatch
	byAccount map[string]*models.UsageBatch
	history   HistoryBackend
}

// New creates a Store. history may be nil.
func New(history HistoryBackend) *Store {
	return &Store{
		byAccount: make(map[string]*models.UsageBatch),
		history:   history,
	}
}

// Put records batch as the latest one and persists it. The in-memory views
// are updated even when persisting fails.
func (s *Store) Put(ctx context.Context, batch *models.UsageBatch) error {
	if batch == nil {
		return nil
	}

	s.mu.Lock()
	s.latest = batch
	if batch.AccountID != "" {
		s.byAccount[batch.AccountID] = batch
	}
	s.mu.Unlock()

	if s.history == nil {
		return nil
	}
	if _, err := s.history.SaveBatch(ctx, batch); err != nil {
		logger.Error("failed to persist batch", "account", batch.AccountID, "error", err)
		return err
	}
	return nil
}

// Latest returns the most recently stored batch, or nil.
func (s *Store) Latest() *models.UsageBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// ForAccount returns the latest batch of accountID, or nil.
func (s *Store) ForAccount(accountID string) *models.UsageBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byAccount[accountID]
}

// Resolve returns the batch for accountID when known, falling back to the
// process-wide latest batch.
func (s *Store) Resolve(accountID string) *models.UsageBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.byAccount[accountID]; ok && accountID != "" {
		return b
	}
	return s.latest
}

// History returns persisted batches of accountID, newest first.
func (s *Store) History(ctx context.Context, accountID string, limit int) ([]models.UsageBatch, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListBatches(ctx, accountID, limit)
}

// HistoryEnabled reports whether batches are persisted.
func (s *Store) HistoryEnabled() bool {
	return s.history != nil
}
