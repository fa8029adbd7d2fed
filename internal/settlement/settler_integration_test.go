//go:build integration

package settlement_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Hemantgithubpro/rewear-1/internal/models"
	core "github.com/Hemantgithubpro/rewear-1/internal/repository/postgres"
	"github.com/Hemantgithubpro/rewear-1/internal/settlement"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

// setupDB starts a disposable Postgres and applies the migrations.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "rewear",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/rewear?sslmode=disable", host, port.Port())
	db, err := core.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, core.Migrate(ctx, db))
	return db
}

type world struct {
	users   *core.PostgresUserRepository
	items   *core.PostgresItemRepository
	swaps   *core.PostgresSwapRepository
	ledger  *core.PostgresLedgerRepository
	settler *settlement.Settler
}

func newWorld(db *sql.DB) *world {
	w := &world{
		users:  core.NewPostgresUserRepository(db),
		items:  core.NewPostgresItemRepository(db),
		swaps:  core.NewPostgresSwapRepository(db),
		ledger: core.NewPostgresLedgerRepository(db),
	}
	w.settler = settlement.NewSettler(core.NewTxManager(db), w.swaps, w.items, w.ledger, settlement.Config{
		MaxRetries:   5,
		RetryBackoff: 10 * time.Millisecond,
	})
	return w
}

func (w *world) user(t *testing.T, name string, balance int32) *models.User {
	u := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", PointsBalance: balance}
	require.NoError(t, w.users.Create(context.Background(), u))
	return u
}

func (w *world) item(t *testing.T, owner uuid.UUID, points int32) *models.Item {
	it := &models.Item{
		OwnerID:     owner,
		Title:       "Wool Sweater",
		Description: "Warm and cozy",
		Category:    models.CategoryTops,
		Type:        "Sweater",
		Size:        models.SizeM,
		Condition:   models.ConditionGood,
		Images:      []string{"https://images.example.com/sweater.jpg"},
		PointsValue: points,
		IsApproved:  true,
		Available:   true,
	}
	require.NoError(t, w.items.Create(context.Background(), it))
	return it
}

func (w *world) acceptedRedemption(t *testing.T, item *models.Item, requester uuid.UUID) *models.SwapRequest {
	points := item.PointsValue
	req := &models.SwapRequest{
		OwnerItemID: item.ID,
		OwnerID:     item.OwnerID,
		RequesterID: requester,
		SwapType:    models.SwapTypePointsRedemption,
		PointsUsed:  &points,
		Status:      models.SwapAccepted,
	}
	require.NoError(t, w.swaps.Create(context.Background(), req))
	return req
}

func (w *world) balance(t *testing.T, id uuid.UUID) int32 {
	b, err := w.ledger.GetBalance(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestSettler_ConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	w := newWorld(setupDB(t))
	ctx := context.Background()

	alice := w.user(t, "alice", 100)
	bob := w.user(t, "bob", 100)
	carol := w.user(t, "carol", 30)

	jacket := w.item(t, alice.ID, 25)
	dress := w.item(t, bob.ID, 20)
	first := w.acceptedRedemption(t, jacket, carol.ID)
	second := w.acceptedRedemption(t, dress, carol.ID)

	var wg sync.WaitGroup
	results := make([]*models.SwapRequest, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = w.settler.Settle(ctx, id)
		}()
	}
	wg.Wait()

	statuses := map[models.SwapStatus]int{}
	for _, r := range results {
		require.NotNil(t, r)
		statuses[r.Status]++
	}
	assert.Equal(t, map[models.SwapStatus]int{models.SwapCompleted: 1, models.SwapFailed: 1}, statuses)

	assert.GreaterOrEqual(t, w.balance(t, carol.ID), int32(0))
	total := w.balance(t, alice.ID) + w.balance(t, bob.ID) + w.balance(t, carol.ID)
	assert.Equal(t, int32(230), total)

	entries, err := w.ledger.ListByUser(ctx, carol.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.EntryDebit, entries[0].Kind)
	assert.Equal(t, w.balance(t, carol.ID), entries[0].BalanceAfter)
}

func TestSettler_DirectSwapExchangesOwnership(t *testing.T) {
	w := newWorld(setupDB(t))
	ctx := context.Background()

	alice := w.user(t, "alice", 100)
	bob := w.user(t, "bob", 100)
	jacket := w.item(t, alice.ID, 25)
	boots := w.item(t, bob.ID, 30)

	req := &models.SwapRequest{
		OwnerItemID:     jacket.ID,
		OwnerID:         alice.ID,
		RequesterID:     bob.ID,
		RequesterItemID: &boots.ID,
		SwapType:        models.SwapTypeDirect,
		Status:          models.SwapAccepted,
	}
	require.NoError(t, w.swaps.Create(ctx, req))

	settled, err := w.settler.Settle(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCompleted, settled.Status)

	gotJacket, err := w.items.GetByID(ctx, jacket.ID)
	require.NoError(t, err)
	gotBoots, err := w.items.GetByID(ctx, boots.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, gotJacket.OwnerID)
	assert.Equal(t, alice.ID, gotBoots.OwnerID)
	assert.False(t, gotJacket.Available)
	assert.False(t, gotBoots.Available)

	assert.Equal(t, int32(100), w.balance(t, alice.ID))
	assert.Equal(t, int32(100), w.balance(t, bob.ID))
}

func TestSwapRequests_OneAcceptedPerItem(t *testing.T) {
	w := newWorld(setupDB(t))

	alice := w.user(t, "alice", 100)
	bob := w.user(t, "bob", 100)
	carol := w.user(t, "carol", 100)
	jacket := w.item(t, alice.ID, 25)

	w.acceptedRedemption(t, jacket, bob.ID)

	points := jacket.PointsValue
	err := w.swaps.Create(context.Background(), &models.SwapRequest{
		OwnerItemID: jacket.ID,
		OwnerID:     alice.ID,
		RequesterID: carol.ID,
		SwapType:    models.SwapTypePointsRedemption,
		PointsUsed:  &points,
		Status:      models.SwapAccepted,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrConflict)
}
