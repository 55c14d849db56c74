package repository

import (
	"sync"

	"github.com/onerilhan/go-point-api/internal/idgen"
	"github.com/onerilhan/go-point-api/internal/interfaces"
	"github.com/onerilhan/go-point-api/internal/models"
)

var _ interfaces.HistoryRepositoryInterface = (*HistoryRepository)(nil)

// HistoryRepository append-only point history kept in memory
type HistoryRepository struct {
	mu     sync.RWMutex
	ids    idgen.Generator
	byUser map[uint64][]models.PointHistory
}

// NewHistoryRepository yeni repository oluşturur. A nil generator means idgen.NewSequence().
func NewHistoryRepository(ids idgen.Generator) *HistoryRepository {
	if ids == nil {
		ids = idgen.NewSequence()
	}
	return &HistoryRepository{
		ids:    ids,
		byUser: make(map[uint64][]models.PointHistory),
	}
}

// Insert allocates the entry id and appends in one critical section, so ids
// grow in insertion order.
func (r *HistoryRepository) Insert(userID uint64, amount int64, txType models.TransactionType, updateMillis int64) models.PointHistory {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := models.PointHistory{
		ID:           r.ids.Next(),
		UserID:       userID,
		Amount:       amount,
		Type:         txType,
		UpdateMillis: updateMillis,
	}
	r.byUser[userID] = append(r.byUser[userID], entry)

	return entry
}

// SelectAllByUserID returns a copy of the user's history in insertion order
func (r *HistoryRepository) SelectAllByUserID(userID uint64) []models.PointHistory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byUser[userID]
	out := make([]models.PointHistory, len(entries))
	copy(out, entries)
	return out
}
