package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"sakubijak/internal/auth"
	"sakubijak/internal/cache"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
	"sakubijak/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes the requester's own account.
type UserService interface {
	Me(ctx context.Context, requester auth.Requester) (*model.User, error)
	DeleteMe(ctx context.Context, requester auth.Requester) error
}

type userService struct {
	store     repository.Store
	cache     *cache.Client
	tokens    auth.TokenStore
	publisher events.Publisher
	logger    *slog.Logger
}

// NewUserService builds a UserService. cache and tokens may be nil.
func NewUserService(store repository.Store, cache *cache.Client, tokens auth.TokenStore, publisher events.Publisher, logger *slog.Logger) UserService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{store: store, cache: cache, tokens: tokens, publisher: publisher, logger: logger}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) Me(ctx context.Context, requester auth.Requester) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(requester.UserID)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil && cached.ID == requester.UserID {
			return &cached, nil
		}
	}

	var user *model.User
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		user, err = tx.Users.FindByID(ctx, requester.UserID)
		return err
	})
	if err != nil {
		return nil, notFound(err, "user")
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(user.ID), payload, userCacheTTL)
	}
	return user, nil
}

// DeleteMe removes the requester together with every category and
// transaction they own, then revokes the access token that asked for it.
func (s *userService) DeleteMe(ctx context.Context, requester auth.Requester) error {
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		return tx.Users.Delete(ctx, requester.UserID)
	})
	if err != nil {
		return notFound(err, "user")
	}

	_ = s.cache.Delete(ctx, s.cacheKey(requester.UserID))
	if s.tokens != nil && requester.TokenID != "" {
		if err := s.tokens.RevokeAccessToken(ctx, requester.TokenID, time.Until(requester.ExpiresAt)); err != nil {
			s.logger.Warn("revoke access token failed", log.FieldUserID, requester.UserID, log.FieldError, err)
		}
	}
	s.logger.Info("user deleted", log.FieldUserID, requester.UserID)
	s.publisher.Publish(ctx, events.New(events.UserDeleted, requester.UserID, requester.UserID))
	return nil
}
