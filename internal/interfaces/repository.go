// internal/interfaces/repository.go
package interfaces

import "github.com/onerilhan/go-point-api/internal/models"

// BalanceRepositoryInterface user balance storage.
//
// Implementations do not serialize writers for the same user; the caller holds
// the user's lock. Writers for distinct users may run concurrently.
type BalanceRepositoryInterface interface {
	// SelectByID returns the stored record or the zero record for an unseen user
	SelectByID(userID uint64) models.UserPoint

	// InsertOrUpdate overwrites the balance and stamps the current time
	InsertOrUpdate(userID uint64, point int64) models.UserPoint
}

// HistoryRepositoryInterface append-only point history storage, safe for concurrent callers.
type HistoryRepositoryInterface interface {
	// Insert allocates a new entry id and appends the entry
	Insert(userID uint64, amount int64, txType models.TransactionType, updateMillis int64) models.PointHistory

	// SelectAllByUserID returns the user's entries in insertion order, never nil
	SelectAllByUserID(userID uint64) []models.PointHistory
}
