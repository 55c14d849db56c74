// internal/interfaces/service.go
package interfaces

import (
	"context"

	"github.com/onerilhan/go-point-api/internal/models"
)

// PointServiceInterface point business logic
type PointServiceInterface interface {
	// Charge adds amount to the user's balance under the user's lock
	Charge(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error)

	// Use subtracts amount from the user's balance under the user's lock
	Use(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error)

	// GetBalance lock-free balance read
	GetBalance(userID uint64) models.UserPoint

	// GetHistories lock-free history read
	GetHistories(userID uint64) []models.PointHistory
}

// PointDispatcher runs point operations on a worker pool and waits for the result.
type PointDispatcher interface {
	Charge(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error)
	Use(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error)
	GetBalance(ctx context.Context, userID uint64) (models.UserPoint, error)
	GetHistories(ctx context.Context, userID uint64) ([]models.PointHistory, error)
}
