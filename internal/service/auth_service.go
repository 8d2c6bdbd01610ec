package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"sakubijak/internal/auth"
	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
	"sakubijak/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = apperrors.Unauthenticated("invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = apperrors.Conflict("email already registered")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or unknown.
	ErrInvalidRefreshToken = apperrors.Unauthenticated("invalid or expired refresh token")
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult is a freshly issued token pair.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         *model.User
}

// RefreshResult is a new access token issued from a refresh token.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int64
}

// AuthService handles registration and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error)
	Logout(ctx context.Context, requester auth.Requester, refreshToken string) error
}

// TokenTTLs sets the lifetimes of issued tokens.
type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

type authService struct {
	store      repository.Store
	codec      *auth.TokenCodec
	tokenStore auth.TokenStore
	ttl        TokenTTLs
	publisher  events.Publisher
	logger     *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store repository.Store,
	codec *auth.TokenCodec,
	tokenStore auth.TokenStore,
	ttl TokenTTLs,
	publisher events.Publisher,
	logger *slog.Logger,
) AuthService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		store:      store,
		codec:      codec,
		tokenStore: tokenStore,
		ttl:        ttl,
		publisher:  publisher,
		logger:     logger,
	}
}

// Register creates a user with a hashed password. Emails are stored lower case.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name, err := requiredText("name", in.Name, 100)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	err = s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		_, err := tx.Users.FindByEmail(ctx, email)
		if err == nil {
			return ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			// A concurrent registration can still win the unique index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", log.FieldOperation, log.OpRegister, log.FieldUserID, user.ID)
	s.publisher.Publish(ctx, events.New(events.UserRegistered, user.ID, user.ID))
	return user, nil
}

// Login checks credentials and issues an access and a refresh token.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	var user *model.User
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		user, err = tx.Users.FindByEmail(ctx, email)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}

	accessToken, _, err := s.codec.Issue(user.ID, user.Email, s.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, refreshClaims, err := s.codec.IssueRefresh(user.ID, user.Email, s.ttl.Refresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, refreshClaims.ID, user.ID, user.Email, s.ttl.Refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("user logged in", log.FieldOperation, log.OpLogin, log.FieldUserID, user.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.ttl.Access / time.Second),
		User:         user,
	}, nil
}

// Refresh issues a new access token for a registered refresh token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	userID, email, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	if userID != claims.UserID || email != claims.Email {
		return nil, ErrInvalidRefreshToken
	}

	accessToken, _, err := s.codec.Issue(claims.UserID, claims.Email, s.ttl.Access)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	s.logger.Debug("access token refreshed", log.FieldOperation, log.OpRefresh, log.FieldUserID, claims.UserID)
	return &RefreshResult{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.ttl.Access / time.Second),
	}, nil
}

// Logout revokes the presented access token until it expires and forgets
// the refresh token, if one is given.
func (s *authService) Logout(ctx context.Context, requester auth.Requester, refreshToken string) error {
	if refreshToken != "" {
		claims, err := s.codec.VerifyRefresh(refreshToken)
		if err != nil && !errors.Is(err, auth.ErrTokenExpired) {
			return ErrInvalidRefreshToken
		}
		if err == nil {
			if claims.UserID != requester.UserID {
				return ErrInvalidRefreshToken
			}
			if err := s.tokenStore.DeleteRefreshToken(ctx, claims.ID); err != nil {
				return fmt.Errorf("delete refresh token: %w", err)
			}
		}
	}

	if requester.TokenID != "" {
		ttl := time.Until(requester.ExpiresAt)
		if err := s.tokenStore.RevokeAccessToken(ctx, requester.TokenID, ttl); err != nil {
			return fmt.Errorf("revoke access token: %w", err)
		}
	}

	s.logger.Info("user logged out", log.FieldOperation, log.OpLogout, log.FieldUserID, requester.UserID)
	return nil
}
