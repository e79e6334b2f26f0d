package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-deposit-approval/internal/logger"
	"github.com/sbilibin2017/gw-deposit-approval/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrUserAlreadyExists  = errors.New("username already exists")
	ErrUserDoesNotExist   = errors.New("username does not exist")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrReferrerNotFound   = errors.New("referrer does not exist")
)

// AuthUserReader defines read-only user operations for authentication.
type AuthUserReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
}

// UserWriter defines write operations for users.
type UserWriter interface {
	Save(ctx context.Context, user *models.UserDB) error
}

// WalletCreator provisions the zero-balance wallet for a new user.
type WalletCreator interface {
	CreateIfAbsent(ctx context.Context, userID uuid.UUID) error
}

// JWTGenerator defines an interface for generating JWT tokens.
type JWTGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, role string) (string, error)
}

// AuthService handles registration and login.
type AuthService struct {
	reader  AuthUserReader
	writer  UserWriter
	wallets WalletCreator
	jwt     JWTGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(reader AuthUserReader, writer UserWriter, wallets WalletCreator, jwt JWTGenerator) *AuthService {
	return &AuthService{
		reader:  reader,
		writer:  writer,
		wallets: wallets,
		jwt:     jwt,
	}
}

// Register creates a new user. referredBy, when set, must name an existing
// user; the referral link is written once here and never mutated afterwards.
func (svc *AuthService) Register(ctx context.Context, username, password, email string, referredBy *uuid.UUID) error {
	existing, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to check user exists", "err", err)
		return err
	}
	if existing != nil {
		logger.Log.Errorw("user already exists", "username", username)
		return ErrUserAlreadyExists
	}

	if referredBy != nil {
		referrer, err := svc.reader.GetByID(ctx, *referredBy)
		if err != nil {
			logger.Log.Errorw("failed to check referrer exists", "err", err)
			return err
		}
		if referrer == nil {
			return ErrReferrerNotFound
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	user := &models.UserDB{
		UserID:       uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleUser,
		ReferredBy:   referredBy,
	}

	if err := svc.writer.Save(ctx, user); err != nil {
		logger.Log.Errorw("failed to save user", "err", err)
		return err
	}

	if err := svc.wallets.CreateIfAbsent(ctx, user.UserID); err != nil {
		logger.Log.Errorw("failed to create wallet for user", "user_id", user.UserID, "err", err)
		return err
	}

	return nil
}

// Login authenticates a user and returns a JWT token carrying the role claim.
func (svc *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "err", err)
		return "", err
	}
	if user == nil {
		logger.Log.Errorw("user does not exist", "username", username)
		return "", ErrUserDoesNotExist
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Errorw("invalid credentials", "username", username)
		return "", ErrInvalidCredentials
	}

	token, err := svc.jwt.Generate(ctx, user.UserID, user.Role)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "err", err)
		return "", err
	}

	return token, nil
}
