package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

const swapColumns = `id, owner_item_id, owner_id, requester_id, requester_item_id, swap_type, points_used, status, message, failure_reason, created_at, updated_at`

type PostgresSwapRepository struct {
	db *sql.DB
}

func NewPostgresSwapRepository(db *sql.DB) *PostgresSwapRepository {
	return &PostgresSwapRepository{db: db}
}

func (r *PostgresSwapRepository) Create(ctx context.Context, req *models.SwapRequest) (err error) {
	ctx, done := observe(ctx, "swap-repository", "CreateSwap")
	defer func() { done(err) }()

	if req == nil {
		err = pkgerrors.ErrNilEntity
		return err
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = models.SwapPending
	}

	query := `INSERT INTO swap_requests (id, owner_item_id, owner_id, requester_id, requester_item_id, swap_type, points_used, status, message) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`
	err = querier(ctx, r.db).QueryRowContext(ctx, query,
		req.ID, req.OwnerItemID, req.OwnerID, req.RequesterID, nullUUID(req.RequesterItemID),
		string(req.SwapType), nullInt32(req.PointsUsed), string(req.Status), req.Message,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		err = mapError(err)
		slog.Error("failed to create swap request", "method", "Create", "requester_id", req.RequesterID, "error", err)
		return fmt.Errorf("failed to create swap request: %w", err)
	}

	slog.Info("swap request created", "method", "Create", "swap_id", req.ID, "swap_type", req.SwapType)
	return nil
}

func (r *PostgresSwapRepository) GetByID(ctx context.Context, id uuid.UUID) (req *models.SwapRequest, err error) {
	ctx, done := observe(ctx, "swap-repository", "GetSwapByID", attribute.String("swap_id", id.String()))
	defer func() { done(err) }()

	return r.get(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id = $1`, id)
}

func (r *PostgresSwapRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (req *models.SwapRequest, err error) {
	ctx, done := observe(ctx, "swap-repository", "GetSwapByIDForUpdate", attribute.String("swap_id", id.String()))
	defer func() { done(err) }()

	return r.get(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresSwapRepository) get(ctx context.Context, query string, id uuid.UUID) (*models.SwapRequest, error) {
	req, err := scanSwap(querier(ctx, r.db).QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrSwapNotFound
	}
	if err != nil {
		err = mapError(err)
		slog.Error("failed to get swap request", "swap_id", id, "error", err)
		return nil, fmt.Errorf("failed to get swap request: %w", err)
	}
	return req, nil
}

func (r *PostgresSwapRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.SwapStatus, reason string) (err error) {
	ctx, done := observe(ctx, "swap-repository", "UpdateSwapStatus",
		attribute.String("swap_id", id.String()), attribute.String("to", string(to)))
	defer func() { done(err) }()

	if !from.CanTransitionTo(to) {
		err = fmt.Errorf("%w: %s -> %s", pkgerrors.ErrInvalidTransition, from, to)
		return err
	}

	query := `UPDATE swap_requests SET status = $1, failure_reason = $2, updated_at = now() WHERE id = $3 AND status = $4`
	res, err := querier(ctx, r.db).ExecContext(ctx, query, string(to), reason, id, string(from))
	if err != nil {
		err = mapError(err)
		slog.Error("failed to update swap status", "method", "UpdateStatus", "swap_id", id, "error", err)
		return fmt.Errorf("failed to update swap status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		var current string
		err = querier(ctx, r.db).QueryRowContext(ctx, `SELECT status FROM swap_requests WHERE id = $1`, id).Scan(&current)
		if stderrors.Is(err, sql.ErrNoRows) {
			err = pkgerrors.ErrSwapNotFound
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to read swap status: %w", mapError(err))
		}
		err = fmt.Errorf("%w: swap is %s, expected %s", pkgerrors.ErrInvalidTransition, current, from)
		return err
	}

	slog.Info("swap status changed", "method", "UpdateStatus", "swap_id", id, "from", from, "to", to)
	return nil
}

func (r *PostgresSwapRepository) RejectPending(ctx context.Context, itemIDs []uuid.UUID, except uuid.UUID) (ids []uuid.UUID, err error) {
	ctx, done := observe(ctx, "swap-repository", "RejectPendingSwaps")
	defer func() { done(err) }()

	query := `UPDATE swap_requests SET status = 'REJECTED', updated_at = now()
WHERE status = 'PENDING' AND id <> $1
  AND (owner_item_id = ANY($2::uuid[]) OR requester_item_id = ANY($2::uuid[]))
RETURNING id`
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, except, pq.Array(uuidStrings(itemIDs)))
	if err != nil {
		err = mapError(err)
		slog.Error("failed to reject pending swaps", "method", "RejectPending", "error", err)
		return nil, fmt.Errorf("failed to reject pending swaps: %w", err)
	}
	defer rows.Close()

	ids = []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan swap id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rejected swaps: %w", mapError(err))
	}

	if len(ids) > 0 {
		slog.Info("competing swap requests rejected", "method", "RejectPending", "accepted_swap_id", except, "count", len(ids))
	}
	return ids, nil
}

func (r *PostgresSwapRepository) HasPending(ctx context.Context, requesterID, ownerItemID uuid.UUID) (exists bool, err error) {
	ctx, done := observe(ctx, "swap-repository", "HasPendingSwap")
	defer func() { done(err) }()

	query := `SELECT EXISTS (SELECT 1 FROM swap_requests WHERE requester_id = $1 AND owner_item_id = $2 AND status = 'PENDING')`
	if err = querier(ctx, r.db).QueryRowContext(ctx, query, requesterID, ownerItemID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check pending swaps: %w", mapError(err))
	}
	return exists, nil
}

func (r *PostgresSwapRepository) ListForUser(ctx context.Context, userID uuid.UUID, direction models.SwapDirection, status *models.SwapStatus) (reqs []models.SwapRequest, err error) {
	ctx, done := observe(ctx, "swap-repository", "ListSwapsForUser", attribute.String("user_id", userID.String()))
	defer func() { done(err) }()

	q := sq.Select(swapColumns).From("swap_requests").PlaceholderFormat(sq.Dollar)
	switch direction {
	case models.DirectionIncoming:
		q = q.Where(sq.Eq{"owner_id": userID})
	case models.DirectionOutgoing:
		q = q.Where(sq.Eq{"requester_id": userID})
	default:
		q = q.Where(sq.Or{sq.Eq{"owner_id": userID}, sq.Eq{"requester_id": userID}})
	}
	if status != nil {
		q = q.Where(sq.Eq{"status": string(*status)})
	}
	query, args, err := q.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *PostgresSwapRepository) ListByStatus(ctx context.Context, status models.SwapStatus) (reqs []models.SwapRequest, err error) {
	ctx, done := observe(ctx, "swap-repository", "ListSwapsByStatus", attribute.String("status", string(status)))
	defer func() { done(err) }()

	return r.list(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE status = $1 ORDER BY created_at`, string(status))
}

func (r *PostgresSwapRepository) list(ctx context.Context, query string, args ...any) ([]models.SwapRequest, error) {
	rows, err := querier(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("failed to list swap requests", "error", err)
		return nil, fmt.Errorf("failed to list swap requests: %w", mapError(err))
	}
	defer rows.Close()

	reqs := []models.SwapRequest{}
	for rows.Next() {
		req, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan swap request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate swap requests: %w", err)
	}
	return reqs, nil
}

func scanSwap(row rowScanner) (*models.SwapRequest, error) {
	var (
		req           models.SwapRequest
		requesterItem uuid.NullUUID
		pointsUsed    sql.NullInt32
	)
	err := row.Scan(
		&req.ID, &req.OwnerItemID, &req.OwnerID, &req.RequesterID, &requesterItem,
		&req.SwapType, &pointsUsed, &req.Status, &req.Message, &req.FailureReason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if requesterItem.Valid {
		id := requesterItem.UUID
		req.RequesterItemID = &id
	}
	if pointsUsed.Valid {
		p := pointsUsed.Int32
		req.PointsUsed = &p
	}
	return &req, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullInt32(v *int32) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *v, Valid: true}
}
