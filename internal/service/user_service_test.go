package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/events"
	"sakubijak/internal/model"
)

func TestUserService_Me(t *testing.T) {
	store := newMockStore()
	store.Users.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Email: "alice@example.com"}, nil)

	user, err := NewUserService(store, nil, nil, nil, nil).Me(context.Background(), alice)

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestUserService_MeVanished(t *testing.T) {
	store := newMockStore()
	store.Users.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewUserService(store, nil, nil, nil, nil).Me(context.Background(), alice)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DeleteMe(t *testing.T) {
	store := newMockStore()
	store.Users.On("Delete", mock.Anything, uint(1)).Return(nil)
	recorder := &events.Recorder{}

	require.NoError(t, NewUserService(store, nil, nil, recorder, nil).DeleteMe(context.Background(), alice))
	assert.Equal(t, []string{events.UserDeleted}, recorder.Types())
	assert.Equal(t, 1, store.Commits)
}

func TestUserService_DeleteMeRevokesAccessToken(t *testing.T) {
	store := newMockStore()
	store.Users.On("Delete", mock.Anything, uint(1)).Return(nil)
	tokens := new(MockTokenStore)
	tokens.On("RevokeAccessToken", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= time.Hour
	})).Return(nil)
	requester := alice
	requester.TokenID = "jti-1"
	requester.ExpiresAt = time.Now().Add(time.Hour)

	require.NoError(t, NewUserService(store, nil, tokens, nil, nil).DeleteMe(context.Background(), requester))
	tokens.AssertExpectations(t)
}

func TestUserService_DeleteMeKeepsTokenOnFailure(t *testing.T) {
	store := newMockStore()
	store.Users.On("Delete", mock.Anything, uint(1)).Return(gorm.ErrRecordNotFound)
	tokens := new(MockTokenStore)
	requester := alice
	requester.TokenID = "jti-1"

	err := NewUserService(store, nil, tokens, nil, nil).DeleteMe(context.Background(), requester)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	tokens.AssertNotCalled(t, "RevokeAccessToken", mock.Anything, mock.Anything, mock.Anything)
}
