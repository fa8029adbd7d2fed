package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
)

//go:generate mockgen -destination=mocks/mock_ledger_repository.go -package=mocks . LedgerRepository

// LedgerRepository is the read side of the points ledger.
type LedgerRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int32, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error)
}

//go:generate mockgen -destination=mocks/mock_tx_manager.go -package=mocks . TxManager

// TxManager runs fn atomically; repositories called with the ctx passed to fn
// take part in the same transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
