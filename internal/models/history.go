package models

import (
	"encoding/json"
	"fmt"
)

// TransactionType tags a history entry.
type TransactionType int

const (
	TransactionCharge TransactionType = iota + 1
	TransactionUse
	TransactionFail
)

var transactionTypeNames = map[TransactionType]string{
	TransactionCharge: "CHARGE",
	TransactionUse:    "USE",
	TransactionFail:   "FAIL",
}

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TransactionType(%d)", int(t))
}

// MarshalJSON writes the type as "CHARGE", "USE" or "FAIL"
func (t TransactionType) MarshalJSON() ([]byte, error) {
	name, ok := transactionTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown transaction type: %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON parses the names produced by MarshalJSON.
func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for k, v := range transactionTypeNames {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown transaction type: %q", name)
}

// PointHistory is one audit record of a charge or use attempt. Amount is the
// amount the caller requested, not the delta that was applied.
type PointHistory struct {
	ID           int64           `json:"id"`
	UserID       uint64          `json:"userId"`
	Amount       int64           `json:"amount"`
	Type         TransactionType `json:"type"`
	UpdateMillis int64           `json:"updateMillis"`
}
