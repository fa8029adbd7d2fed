package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	stderrors "errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/redis"
	"github.com/Hemantgithubpro/rewear-1/internal/models"
	"github.com/Hemantgithubpro/rewear-1/internal/repository"
	"github.com/Hemantgithubpro/rewear-1/internal/validation"
	pkgerrors "github.com/Hemantgithubpro/rewear-1/pkg/errors"
)

type AuthService interface {
	Register(ctx context.Context, in validation.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in validation.LoginInput) (string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in validation.ProfileUpdateInput) (*models.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	GenerateJWT(userID uuid.UUID, role models.Role) (string, error)
	TTL() time.Duration
}

type authService struct {
	userRepo        repository.UserRepository
	redisClient     redis.RedisClient
	tokens          TokenIssuer
	startingBalance int32
}

func NewAuthService(userRepo repository.UserRepository, redisClient redis.RedisClient, tokens TokenIssuer, startingBalance int32) *authService {
	return &authService{
		userRepo:        userRepo,
		redisClient:     redisClient,
		tokens:          tokens,
		startingBalance: startingBalance,
	}
}

func (s *authService) Register(ctx context.Context, in validation.RegisterInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	in = in.Normalize()
	if err := validation.ValidateRegister(in); err != nil {
		return nil, spanError(span, err, "invalid registration")
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if existing != nil {
		slog.Warn("email already registered", "email", in.Email, "existing_id", existing.ID)
		return nil, spanError(span, pkgerrors.ErrEmailExists, "email already registered")
	}
	if err != nil && !stderrors.Is(err, pkgerrors.ErrUserNotFound) {
		slog.Error("failed to check user existence", "email", in.Email, "error", err)
		return nil, spanError(span, fmt.Errorf("%w: failed to check user existence", pkgerrors.ErrInternal), "user check failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "email", in.Email, "error", err)
		return nil, spanError(span, fmt.Errorf("%w: failed to hash password", pkgerrors.ErrInternal), "password hashing failed")
	}

	user := &models.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Role:          models.RoleUser,
		PointsBalance: s.startingBalance,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, spanError(span, err, "user creation failed")
	}

	span.SetAttributes(attribute.String("user_id", user.ID.String()))
	slog.Info("user registered", "user_id", user.ID, "starting_balance", user.PointsBalance)
	return user, nil
}

// Login returns a signed token and stores it as the user's only valid token.
func (s *authService) Login(ctx context.Context, in validation.LoginInput) (string, error) {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	in = in.Normalize()
	if err := validation.ValidateLogin(in); err != nil {
		return "", spanError(span, err, "invalid login payload")
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		slog.Warn("login for unknown email", "email", in.Email, "error", err)
		return "", spanError(span, pkgerrors.ErrInvalidCredentials, "unknown email")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		slog.Warn("invalid password", "user_id", user.ID)
		return "", spanError(span, pkgerrors.ErrInvalidCredentials, "invalid password")
	}

	token, err := s.tokens.GenerateJWT(user.ID, user.Role)
	if err != nil {
		slog.Error("failed to generate JWT", "user_id", user.ID, "error", err)
		return "", spanError(span, fmt.Errorf("failed to generate token: %w", err), "token generation failed")
	}

	if err := s.redisClient.Set(ctx, redis.TokenKey(user.ID), token, s.tokens.TTL()); err != nil {
		slog.Error("failed to store JWT", "user_id", user.ID, "error", err)
		return "", spanError(span, fmt.Errorf("failed to store token: %w", err), "token store failed")
	}

	slog.Info("user logged in", "user_id", user.ID)
	return token, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	if err := s.redisClient.Del(ctx, redis.TokenKey(userID)); err != nil {
		slog.Error("failed to revoke token", "user_id", userID, "error", err)
		return spanError(span, fmt.Errorf("failed to revoke token: %w", err), "token revoke failed")
	}
	slog.Info("user logged out", "user_id", userID)
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "GetProfile")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, spanError(span, err, "user lookup failed")
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in validation.ProfileUpdateInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	in = in.Normalize()
	if err := validation.ValidateProfileUpdate(in); err != nil {
		return nil, spanError(span, err, "invalid profile")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, spanError(span, err, "user lookup failed")
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Image = in.Image
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, spanError(span, err, "profile update failed")
	}
	return user, nil
}
