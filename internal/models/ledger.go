package models

import (
	"time"

	"github.com/google/uuid"
)

type EntryKind string

const (
	EntryCredit EntryKind = "CREDIT"
	EntryDebit  EntryKind = "DEBIT"
)

// LedgerEntry records one balance movement caused by a settled swap. Amount is
// always positive; Kind tells whether it was added or taken away.
type LedgerEntry struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	SwapID       uuid.UUID `json:"swapId"`
	Amount       int32     `json:"amount"`
	Kind         EntryKind `json:"kind"`
	BalanceAfter int32     `json:"balanceAfter"`
	CreatedAt    time.Time `json:"createdAt"`
}
