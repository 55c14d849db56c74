package repository

import (
	"sync"
	"time"

	"github.com/onerilhan/go-point-api/internal/interfaces"
	"github.com/onerilhan/go-point-api/internal/models"
)

const balanceShardCount = 32

var _ interfaces.BalanceRepositoryInterface = (*BalanceRepository)(nil)

type balanceShard struct {
	mu   sync.RWMutex
	rows map[uint64]models.UserPoint
}

// BalanceRepository in-memory user balances, sharded by user id.
//
// Shard locks only guard the map structure. Serializing read-modify-write
// cycles for one user is the caller's job.
type BalanceRepository struct {
	shards [balanceShardCount]*balanceShard
	now    func() time.Time
}

// NewBalanceRepository yeni repository oluşturur
func NewBalanceRepository() *BalanceRepository {
	return NewBalanceRepositoryWithClock(time.Now)
}

// NewBalanceRepositoryWithClock uses now to stamp UpdateMillis
func NewBalanceRepositoryWithClock(now func() time.Time) *BalanceRepository {
	r := &BalanceRepository{now: now}
	for i := range r.shards {
		r.shards[i] = &balanceShard{rows: make(map[uint64]models.UserPoint)}
	}
	return r
}

func (r *BalanceRepository) shard(userID uint64) *balanceShard {
	return r.shards[userID%balanceShardCount]
}

// SelectByID returns the stored balance, or the zero record if the user has none
func (r *BalanceRepository) SelectByID(userID uint64) models.UserPoint {
	s := r.shard(userID)

	s.mu.RLock()
	row, ok := s.rows[userID]
	s.mu.RUnlock()

	if !ok {
		return models.EmptyUserPoint(userID, r.now())
	}
	return row
}

// InsertOrUpdate overwrites the user's balance. Range checks belong to the caller.
func (r *BalanceRepository) InsertOrUpdate(userID uint64, point int64) models.UserPoint {
	row := models.UserPoint{
		ID:           userID,
		Point:        point,
		UpdateMillis: r.now().UnixMilli(),
	}

	s := r.shard(userID)
	s.mu.Lock()
	s.rows[userID] = row
	s.mu.Unlock()

	return row
}
