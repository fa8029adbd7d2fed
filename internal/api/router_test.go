package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hemantgithubpro/rewear-1/internal/handler"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/auth"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	redismocks "github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/services/mocks"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

func TestSetupRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	redisClient := redismocks.NewMockRedisClient(ctrl)
	catalog := mocks.NewMockCatalogService(ctrl)
	tokens := auth.NewTokenManager("secret", time.Hour)

	h := handler.NewHandler(mocks.NewMockAuthService(ctrl), catalog, mocks.NewMockLedgerService(ctrl), mocks.NewMockSwapService(ctrl))
	router := SetupRouter(h, redisClient, tokens)

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func(role models.Role) (uuid.UUID, string) {
		id := uuid.New()
		token, err := tokens.GenerateJWT(id, role)
		require.NoError(t, err)
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(id)).Return(token, nil).AnyTimes()
		return id, token
	}

	t.Run("healthz", func(t *testing.T) {
		rec := serve(http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
		assert.GreaterOrEqual(t, testutil.ToFloat64(observability.HTTPRequests.WithLabelValues(http.MethodGet, "/healthz", "200")), float64(1))
	})

	t.Run("public browse needs no token", func(t *testing.T) {
		catalog.EXPECT().List(gomock.Any(), gomock.Any()).Return([]models.Item{}, nil)

		assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/items", "").Code)
	})

	t.Run("item detail identifies the caller when a token is sent", func(t *testing.T) {
		id, token := login(models.RoleUser)
		itemID := uuid.New()
		catalog.EXPECT().Get(gomock.Any(), &models.Principal{UserID: id, Role: models.RoleUser}, itemID).
			Return(&models.Item{ID: itemID, OwnerID: id}, nil)

		assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/items/"+itemID.String(), token).Code)
	})

	t.Run("item detail without token is anonymous", func(t *testing.T) {
		itemID := uuid.New()
		catalog.EXPECT().Get(gomock.Any(), (*models.Principal)(nil), itemID).Return(nil, pkgerrors.ErrItemNotFound)

		assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/items/"+itemID.String(), "").Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/api/profile", "").Code)
	})

	t.Run("admin route as a regular user", func(t *testing.T) {
		_, token := login(models.RoleUser)

		assert.Equal(t, http.StatusForbidden, serve(http.MethodGet, "/api/admin/items/pending", token).Code)
	})

	t.Run("admin route as an admin", func(t *testing.T) {
		id, token := login(models.RoleAdmin)
		catalog.EXPECT().ListPending(gomock.Any(), models.Principal{UserID: id, Role: models.RoleAdmin}).Return([]models.Item{}, nil)

		assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/api/admin/items/pending", token).Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/nope", "").Code)
	})
}
