package models

import "time"

// UserPoint is the current point balance of a user. Values are immutable; every update produces a new record.
type UserPoint struct {
	ID           uint64 `json:"id"`
	Point        int64  `json:"point"`
	UpdateMillis int64  `json:"updateMillis"`
}

// EmptyUserPoint returns the zero record served for a user that was never written.
func EmptyUserPoint(id uint64, now time.Time) UserPoint {
	return UserPoint{
		ID:           id,
		Point:        0,
		UpdateMillis: now.UnixMilli(),
	}
}
