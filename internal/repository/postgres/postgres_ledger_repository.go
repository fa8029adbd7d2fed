package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

// PostgresLedgerRepository stores point balances on the users table and the
// movements that produced them in ledger_entries.
type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

func (r *PostgresLedgerRepository) GetBalance(ctx context.Context, userID uuid.UUID) (balance int32, err error) {
	ctx, done := observe(ctx, "ledger-repository", "GetBalance", attribute.String("user_id", userID.String()))
	defer func() { done(err) }()

	err = querier(ctx, r.db).QueryRowContext(ctx, `SELECT points_balance FROM users WHERE id = $1`, userID).Scan(&balance)
	if stderrors.Is(err, sql.ErrNoRows) {
		err = pkgerrors.ErrUserNotFound
		return 0, err
	}
	if err != nil {
		slog.Error("failed to get balance", "method", "GetBalance", "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

func (r *PostgresLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID) (entries []models.LedgerEntry, err error) {
	ctx, done := observe(ctx, "ledger-repository", "ListLedgerEntries", attribute.String("user_id", userID.String()))
	defer func() { done(err) }()

	query := `SELECT id, user_id, swap_id, amount, kind, balance_after, created_at FROM ledger_entries WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, userID)
	if err != nil {
		slog.Error("failed to list ledger entries", "method", "ListByUser", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries = []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		if err = rows.Scan(&e.ID, &e.UserID, &e.SwapID, &e.Amount, &e.Kind, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

// LockUsers takes row locks on the users in id order and returns their
// balances. Missing users are absent from the result.
func (r *PostgresLedgerRepository) LockUsers(ctx context.Context, ids []uuid.UUID) (balances map[uuid.UUID]int32, err error) {
	ctx, done := observe(ctx, "ledger-repository", "LockUsers")
	defer func() { done(err) }()

	query := `SELECT id, points_balance FROM users WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, pq.Array(uuidStrings(ids)))
	if err != nil {
		err = mapError(err)
		slog.Error("failed to lock users", "method", "LockUsers", "error", err)
		return nil, fmt.Errorf("failed to lock users: %w", err)
	}
	defer rows.Close()

	balances = make(map[uuid.UUID]int32, len(ids))
	for rows.Next() {
		var (
			id      uuid.UUID
			balance int32
		)
		if err = rows.Scan(&id, &balance); err != nil {
			return nil, fmt.Errorf("failed to scan user balance: %w", err)
		}
		balances[id] = balance
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user balances: %w", mapError(err))
	}
	return balances, nil
}

// ChangeBalance adds delta to the user's balance and returns the new value.
// The update is refused when it would take the balance below zero.
func (r *PostgresLedgerRepository) ChangeBalance(ctx context.Context, userID uuid.UUID, delta int32) (balance int32, err error) {
	ctx, done := observe(ctx, "ledger-repository", "ChangeBalance", attribute.String("user_id", userID.String()))
	defer func() { done(err) }()

	query := `UPDATE users SET points_balance = points_balance + $1, updated_at = now() WHERE id = $2 AND points_balance + $1 >= 0 RETURNING points_balance`
	err = querier(ctx, r.db).QueryRowContext(ctx, query, delta, userID).Scan(&balance)
	if stderrors.Is(err, sql.ErrNoRows) {
		slog.Warn("balance change refused", "method", "ChangeBalance", "user_id", userID, "delta", delta)
		err = pkgerrors.ErrInsufficientPoints
		return 0, err
	}
	if err != nil {
		err = mapError(err)
		slog.Error("failed to change balance", "method", "ChangeBalance", "user_id", userID, "delta", delta, "error", err)
		return 0, fmt.Errorf("failed to change balance: %w", err)
	}

	slog.Info("balance changed", "method", "ChangeBalance", "user_id", userID, "delta", delta, "balance", balance)
	return balance, nil
}

func (r *PostgresLedgerRepository) AppendEntry(ctx context.Context, entry *models.LedgerEntry) (err error) {
	ctx, done := observe(ctx, "ledger-repository", "AppendLedgerEntry")
	defer func() { done(err) }()

	if entry == nil {
		err = pkgerrors.ErrNilEntity
		return err
	}
	if entry.Amount <= 0 {
		err = pkgerrors.ErrInvalidAmount
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	query := `INSERT INTO ledger_entries (id, user_id, swap_id, amount, kind, balance_after) VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	err = querier(ctx, r.db).QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.SwapID, entry.Amount, string(entry.Kind), entry.BalanceAfter,
	).Scan(&entry.CreatedAt)
	if err != nil {
		err = mapError(err)
		slog.Error("failed to append ledger entry", "method", "AppendEntry", "user_id", entry.UserID, "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}
