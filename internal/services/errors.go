package services

import (
	"errors"
	"fmt"
)

// Charge and balance limits.
const (
	MinChargeAmount int64 = 10_000
	ChargeUnit      int64 = 10_000
	MaxChargeAmount int64 = 100_000
	MaxBalance      int64 = 10_000_000
)

// Validation and bounds errors. Their messages reach API clients as-is.
var (
	ErrBelowMinCharge      = fmt.Errorf("charge amount must be at least %d", MinChargeAmount)
	ErrNotChargeUnit       = fmt.Errorf("charge amount must be a multiple of %d", ChargeUnit)
	ErrAboveMaxCharge      = fmt.Errorf("charge amount must not exceed %d", MaxChargeAmount)
	ErrMaxBalanceExceeded  = fmt.Errorf("balance cannot exceed %d points", MaxBalance)
	ErrNegativeUse         = errors.New("use amount must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Structural errors.
var (
	ErrInterrupted  = errors.New("interrupted while waiting for user lock")
	ErrInternal     = errors.New("internal point store failure")
	ErrAuditLost    = errors.New("point history append failed")
	ErrQueueFull    = errors.New("point queue is full, try again later")
	ErrQueueStopped = errors.New("point queue is stopped")
)

var validationErrors = []error{
	ErrBelowMinCharge,
	ErrNotChargeUnit,
	ErrAboveMaxCharge,
	ErrMaxBalanceExceeded,
	ErrNegativeUse,
	ErrInsufficientBalance,
}

// IsValidationError reports whether err is a rejected amount or balance bound,
// as opposed to a structural failure.
func IsValidationError(err error) bool {
	if err == nil || errors.Is(err, ErrAuditLost) {
		return false
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
