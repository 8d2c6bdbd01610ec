package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sakubijak/internal/auth"
	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
)

var alice = auth.Requester{UserID: 1, Email: "alice@example.com"}

func strPtr(s string) *string { return &s }

func TestCategoryService_Create(t *testing.T) {
	store := newMockStore()
	store.Categories.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
		return c.Name == "Food" && c.UserID == 1 && c.Description == nil
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Category).ID = 10
	}).Return(nil)
	recorder := &events.Recorder{}

	service := NewCategoryService(store, recorder, nil)
	category, err := service.Create(context.Background(), alice, CategoryInput{
		Name:        strPtr("  Food "),
		Description: strPtr(" "),
	})

	require.NoError(t, err)
	assert.Equal(t, uint(10), category.ID)
	assert.Equal(t, []string{events.CategoryCreated}, recorder.Types())
	store.Categories.AssertExpectations(t)
}

func TestCategoryService_LogsOperationFields(t *testing.T) {
	store := newMockStore()
	store.Categories.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Category).ID = 10
	}).Return(nil)
	store.Categories.On("Delete", mock.Anything, uint(1), uint(10)).Return(nil)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	service := NewCategoryService(store, nil, logger)
	_, err := service.Create(context.Background(), alice, CategoryInput{Name: strPtr("Food")})
	require.NoError(t, err)
	require.NoError(t, service.Delete(context.Background(), alice, 10))

	out := buf.String()
	assert.Contains(t, out, `"`+log.FieldOperation+`":"`+log.OpCreate+`"`)
	assert.Contains(t, out, `"`+log.FieldOperation+`":"`+log.OpDelete+`"`)
	assert.Contains(t, out, `"`+log.FieldEntityID+`":10`)
}

func TestCategoryService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CategoryInput
	}{
		{name: "missing name", input: CategoryInput{}},
		{name: "blank name", input: CategoryInput{Name: strPtr("   ")}},
		{name: "name too long", input: CategoryInput{Name: strPtr(string(make([]byte, 101)))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			service := NewCategoryService(store, nil, nil)

			_, err := service.Create(context.Background(), alice, tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			store.Categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCategoryService_GetNotOwned(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewCategoryService(store, nil, nil).Get(context.Background(), alice, 99)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "category not found")
}

func TestCategoryService_UpdatePartial(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(10)).
		Return(&model.Category{ID: 10, Name: "Food", Description: strPtr("meals"), UserID: 1}, nil)
	store.Categories.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	category, err := NewCategoryService(store, nil, nil).
		Update(context.Background(), alice, 10, CategoryInput{Name: strPtr("Groceries")})

	require.NoError(t, err)
	assert.Equal(t, "Groceries", category.Name)
	require.NotNil(t, category.Description)
	assert.Equal(t, "meals", *category.Description)
}

func TestCategoryService_UpdateEmptyName(t *testing.T) {
	store := newMockStore()

	_, err := NewCategoryService(store, nil, nil).
		Update(context.Background(), alice, 10, CategoryInput{Name: strPtr("")})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	store.Categories.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryService_UpdateNoFields(t *testing.T) {
	store := newMockStore()

	_, err := NewCategoryService(store, nil, nil).Update(context.Background(), alice, 10, CategoryInput{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.EqualError(t, err, "no fields to update")
	assert.Zero(t, store.Commits)
}

func TestCategoryService_CreateForDeletedOwner(t *testing.T) {
	store := newMockStore()
	store.Categories.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(gorm.ErrForeignKeyViolated)
	recorder := &events.Recorder{}

	_, err := NewCategoryService(store, recorder, nil).Create(context.Background(), alice, CategoryInput{Name: strPtr("Ghost")})

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.EqualError(t, err, "account no longer exists")
	assert.Empty(t, recorder.Events)
}

func TestCategoryService_DeleteMissing(t *testing.T) {
	store := newMockStore()
	store.Categories.On("Delete", mock.Anything, uint(1), uint(10)).Return(gorm.ErrRecordNotFound)
	recorder := &events.Recorder{}

	err := NewCategoryService(store, recorder, nil).Delete(context.Background(), alice, 10)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, recorder.Events)
}
