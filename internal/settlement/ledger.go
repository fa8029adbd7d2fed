package settlement

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

//go:generate mockgen -destination=mocks/mock_stores.go -package=mocks . SwapStore,ItemStore,BalanceStore

// BalanceStore persists point balances and ledger entries. Implementations
// must refuse a change that would take a balance below zero.
type BalanceStore interface {
	LockUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int32, error)
	ChangeBalance(ctx context.Context, userID uuid.UUID, delta int32) (int32, error)
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) error
}

// ledger is the only writer of user balances. Its methods must run inside the
// settlement transaction.
type ledger struct {
	store BalanceStore
}

func (l ledger) credit(ctx context.Context, userID, swapID uuid.UUID, amount int32) (int32, error) {
	return l.move(ctx, userID, swapID, amount, models.EntryCredit)
}

// debit fails with ErrInsufficientPoints when amount exceeds the balance; the
// balance is left unchanged.
func (l ledger) debit(ctx context.Context, userID, swapID uuid.UUID, amount int32) (int32, error) {
	return l.move(ctx, userID, swapID, amount, models.EntryDebit)
}

func (l ledger) move(ctx context.Context, userID, swapID uuid.UUID, amount int32, kind models.EntryKind) (int32, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: %d", pkgerrors.ErrInvalidAmount, amount)
	}

	delta := amount
	if kind == models.EntryDebit {
		delta = -amount
	}
	balance, err := l.store.ChangeBalance(ctx, userID, delta)
	if err != nil {
		return 0, err
	}

	entry := &models.LedgerEntry{
		UserID:       userID,
		SwapID:       swapID,
		Amount:       amount,
		Kind:         kind,
		BalanceAfter: balance,
	}
	if err := l.store.AppendEntry(ctx, entry); err != nil {
		return 0, err
	}

	slog.Info("ledger entry written", "user_id", userID, "swap_id", swapID, "kind", kind, "amount", amount, "balance", balance)
	return balance, nil
}
