package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/onerilhan/go-point-api/internal/interfaces"
	"github.com/onerilhan/go-point-api/internal/models"
)

var _ interfaces.PointServiceInterface = (*PointService)(nil)

// PointService charges and uses user points.
//
// Every Charge or Use call appends exactly one history entry: CHARGE or USE on
// success, FAIL with the requested amount on any rejection. Mutations of one
// user run one at a time, in the order the user's lock was granted; the entry
// is appended before the lock is released so history order matches.
type PointService struct {
	balances  interfaces.BalanceRepositoryInterface
	histories interfaces.HistoryRepositoryInterface
	locks     *LockRegistry
	now       func() time.Time
}

// NewPointService yeni service oluşturur
func NewPointService(
	balances interfaces.BalanceRepositoryInterface,
	histories interfaces.HistoryRepositoryInterface,
	locks *LockRegistry,
) *PointService {
	if locks == nil {
		locks = NewLockRegistry()
	}
	return &PointService{
		balances:  balances,
		histories: histories,
		locks:     locks,
		now:       time.Now,
	}
}

// Charge adds amount to the user's balance.
func (s *PointService) Charge(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error) {
	return s.apply(ctx, userID, amount, models.TransactionCharge, func(balance int64) (int64, error) {
		return chargedBalance(balance, amount)
	})
}

// Use subtracts amount from the user's balance.
func (s *PointService) Use(ctx context.Context, userID uint64, amount int64) (models.UserPoint, error) {
	return s.apply(ctx, userID, amount, models.TransactionUse, func(balance int64) (int64, error) {
		return usedBalance(balance, amount)
	})
}

// GetBalance reads without the user's lock and may observe a balance between
// two concurrent writes.
func (s *PointService) GetBalance(userID uint64) models.UserPoint {
	return s.balances.SelectByID(userID)
}

// GetHistories returns the user's history in insertion order.
func (s *PointService) GetHistories(userID uint64) []models.PointHistory {
	histories := s.histories.SelectAllByUserID(userID)
	if histories == nil {
		return []models.PointHistory{}
	}
	return histories
}

func (s *PointService) apply(
	ctx context.Context,
	userID uint64,
	amount int64,
	txType models.TransactionType,
	compute func(balance int64) (int64, error),
) (models.UserPoint, error) {
	lock := s.locks.LockFor(userID)
	if err := lock.Lock(ctx); err != nil {
		// never held the lock; the FAIL entry is written without it
		return models.UserPoint{}, s.record(userID, amount, txType, fmt.Errorf("%w: %w", ErrInterrupted, err))
	}
	defer lock.Unlock()

	result, err := s.mutate(userID, compute)
	if err = s.record(userID, amount, txType, err); err != nil {
		if errors.Is(err, ErrAuditLost) {
			return result, err
		}
		return models.UserPoint{}, err
	}

	log.Debug().
		Uint64("user_id", userID).
		Int64("amount", amount).
		Stringer("type", txType).
		Int64("point", result.Point).
		Msg("Point transaction applied")

	return result, nil
}

// mutate runs read -> compute -> write. Store panics become ErrInternal.
func (s *PointService) mutate(userID uint64, compute func(int64) (int64, error)) (result models.UserPoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Uint64("user_id", userID).
				Msg("Balance store panicked")
			result, err = models.UserPoint{}, fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	current := s.balances.SelectByID(userID)

	next, err := compute(current.Point)
	if err != nil {
		return models.UserPoint{}, err
	}

	return s.balances.InsertOrUpdate(userID, next), nil
}

// record appends the history entry for one attempt and returns opErr, joined
// with ErrAuditLost if the append itself failed.
func (s *PointService) record(userID uint64, amount int64, txType models.TransactionType, opErr error) (err error) {
	entryType := txType
	if opErr != nil {
		entryType = models.TransactionFail
		logEvent := log.Warn()
		if !IsValidationError(opErr) {
			logEvent = log.Error()
		}
		logEvent.
			Err(opErr).
			Uint64("user_id", userID).
			Int64("amount", amount).
			Stringer("type", txType).
			Msg("Point transaction rejected")
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("recover", r).
				Uint64("user_id", userID).
				Int64("amount", amount).
				Stringer("type", entryType).
				Msg("CRITICAL: point history entry lost")
			err = errors.Join(opErr, fmt.Errorf("%w: %v", ErrAuditLost, r))
		}
	}()

	s.histories.Insert(userID, amount, entryType, s.now().UnixMilli())

	return opErr
}

func chargedBalance(balance, amount int64) (int64, error) {
	if amount < MinChargeAmount {
		return 0, ErrBelowMinCharge
	}
	if amount%ChargeUnit != 0 {
		return 0, ErrNotChargeUnit
	}
	if amount > MaxChargeAmount {
		return 0, ErrAboveMaxCharge
	}

	next := balance + amount
	if next > MaxBalance {
		return 0, ErrMaxBalanceExceeded
	}
	return next, nil
}

func usedBalance(balance, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeUse
	}

	next := balance - amount
	if next < 0 {
		return 0, ErrInsufficientBalance
	}
	return next, nil
}
