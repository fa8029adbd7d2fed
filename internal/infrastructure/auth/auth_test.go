package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	redismocks "github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis/mocks"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

func TestTokenManager(t *testing.T) {
	tokens := NewTokenManager("secret", time.Hour)
	userID := uuid.New()

	token, err := tokens.GenerateJWT(userID, models.RoleAdmin)
	require.NoError(t, err)

	claims, err := tokens.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	t.Run("other secret", func(t *testing.T) {
		_, err := NewTokenManager("other", time.Hour).ValidateJWT(token)
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := NewTokenManager("secret", -time.Minute).GenerateJWT(userID, models.RoleUser)
		require.NoError(t, err)
		_, err = tokens.ValidateJWT(expired)
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.ValidateJWT("not-a-token")
		assert.ErrorIs(t, err, pkgerrors.ErrUnauthorized)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, err := NewTokenManager("", time.Hour).GenerateJWT(userID, models.RoleUser)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisClient := redismocks.NewMockRedisClient(ctrl)
	tokens := NewTokenManager("secret", time.Hour)
	userID := uuid.New()
	token, err := tokens.GenerateJWT(userID, models.RoleUser)
	require.NoError(t, err)

	var seen models.Principal
	handler := AuthMiddleware(redisClient, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return(token, nil)

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, seen.UserID)
		assert.Equal(t, models.RoleUser, seen.Role)
	})

	t.Run("logged out", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return("", redis.ErrKeyNotFound)

		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("superseded by a newer login", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return("newer-token", nil)

		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("redis unavailable", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return("", errors.New("connection refused"))

		assert.Equal(t, http.StatusUnauthorized, serve("Bearer "+token).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("").Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, serve("Basic "+token).Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	redisClient := redismocks.NewMockRedisClient(ctrl)
	tokens := NewTokenManager("secret", time.Hour)
	userID := uuid.New()
	token, err := tokens.GenerateJWT(userID, models.RoleUser)
	require.NoError(t, err)

	var seen *models.Principal
	handler := OptionalAuth(redisClient, tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = nil
		if p, ok := PrincipalFrom(r.Context()); ok {
			seen = &p
		}
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/items/"+uuid.NewString(), nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(""))
		assert.Nil(t, seen)
	})

	t.Run("valid token", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return(token, nil)

		assert.Equal(t, http.StatusOK, serve("Bearer "+token))
		require.NotNil(t, seen)
		assert.Equal(t, userID, seen.UserID)
	})

	t.Run("revoked token falls back to anonymous", func(t *testing.T) {
		redisClient.EXPECT().Get(gomock.Any(), redis.TokenKey(userID)).Return("", redis.ErrKeyNotFound)

		assert.Equal(t, http.StatusOK, serve("Bearer "+token))
		assert.Nil(t, seen)
	})

	t.Run("garbage token falls back to anonymous", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve("Bearer not-a-jwt"))
		assert.Nil(t, seen)
	})
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(p *models.Principal) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/items/pending", nil)
		if p != nil {
			req = req.WithContext(WithPrincipal(req.Context(), *p))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(&models.Principal{UserID: uuid.New(), Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusForbidden, serve(&models.Principal{UserID: uuid.New(), Role: models.RoleUser}))
	assert.Equal(t, http.StatusUnauthorized, serve(nil))
}
