package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/events"
	"sakubijak/internal/model"
	"sakubijak/internal/repository"
)

func validTransactionInput() TransactionInput {
	return TransactionInput{
		Description: strPtr("Lunch"),
		Amount:      strPtr("15.50"),
		Date:        strPtr("2025-03-10"),
		CategoryID:  strPtr("10"),
	}
}

func TestTransactionService_Create(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(10)).Return(&model.Category{ID: 10, UserID: 1, Name: "Food"}, nil)
	store.Transactions.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
		return txn.UserID == 1 &&
			txn.CategoryID == 10 &&
			txn.Amount.Equal(decimal.RequireFromString("15.5")) &&
			txn.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) &&
			*txn.Description == "Lunch"
	})).Return(nil)
	recorder := &events.Recorder{}

	txn, err := NewTransactionService(store, recorder, nil).Create(context.Background(), alice, validTransactionInput())

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", txn.DateString())
	assert.Equal(t, []string{events.TransactionCreated}, recorder.Types())
	store.Transactions.AssertExpectations(t)
}

func TestTransactionService_CreateForeignCategory(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(10)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewTransactionService(store, nil, nil).Create(context.Background(), alice, validTransactionInput())

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	store.Transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTransactionService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*TransactionInput)
		want   string
	}{
		{name: "zero amount", mutate: func(in *TransactionInput) { in.Amount = strPtr("0") }, want: "amount must be greater than zero"},
		{name: "negative amount", mutate: func(in *TransactionInput) { in.Amount = strPtr("-3") }, want: "amount must be greater than zero"},
		{name: "rounds to zero", mutate: func(in *TransactionInput) { in.Amount = strPtr("0.001") }, want: "amount must be greater than zero"},
		{name: "not a number", mutate: func(in *TransactionInput) { in.Amount = strPtr("ten") }, want: "amount must be a decimal number"},
		{name: "too large", mutate: func(in *TransactionInput) { in.Amount = strPtr("12345678901234") }, want: "amount is too large"},
		{name: "bad date", mutate: func(in *TransactionInput) { in.Date = strPtr("10/03/2025") }, want: "date must be a date in YYYY-MM-DD format"},
		{name: "missing description", mutate: func(in *TransactionInput) { in.Description = nil }, want: "description is required"},
		{name: "bad category id", mutate: func(in *TransactionInput) { in.CategoryID = strPtr("-1") }, want: "category_id must be a positive integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTransactionInput()
			tt.mutate(&in)

			_, err := NewTransactionService(newMockStore(), nil, nil).Create(context.Background(), alice, in)
			require.ErrorIs(t, err, apperrors.ErrValidation)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestTransactionService_ListIgnoresForeignCategoryFilter(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(77)).Return(nil, gorm.ErrRecordNotFound)
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store.Transactions.On("List", mock.Anything, uint(1), mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return f.CategoryID == nil && f.From != nil && f.From.Equal(from) && f.To == nil
	})).Return([]model.Transaction{}, nil)

	txns, err := NewTransactionService(store, nil, nil).List(context.Background(), alice, TransactionQuery{
		FromDate:   "2025-03-01",
		CategoryID: "77",
	})

	require.NoError(t, err)
	assert.Empty(t, txns)
	store.Transactions.AssertExpectations(t)
}

func TestTransactionService_ListOwnedCategoryFilter(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(10)).Return(&model.Category{ID: 10, UserID: 1}, nil)
	store.Transactions.On("List", mock.Anything, uint(1), mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return f.CategoryID != nil && *f.CategoryID == 10
	})).Return([]model.Transaction{{ID: 1}}, nil)

	txns, err := NewTransactionService(store, nil, nil).List(context.Background(), alice, TransactionQuery{CategoryID: "10"})

	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestTransactionService_ListBadFilter(t *testing.T) {
	_, err := NewTransactionService(newMockStore(), nil, nil).List(context.Background(), alice, TransactionQuery{ToDate: "yesterday"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTransactionService_UpdateToForeignCategory(t *testing.T) {
	store := newMockStore()
	store.Transactions.On("FindByID", mock.Anything, uint(1), uint(5)).
		Return(&model.Transaction{ID: 5, UserID: 1, CategoryID: 10, Amount: decimal.NewFromInt(3)}, nil)
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(20)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewTransactionService(store, nil, nil).
		Update(context.Background(), alice, 5, TransactionInput{CategoryID: strPtr("20")})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	store.Transactions.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTransactionService_UpdatePartial(t *testing.T) {
	store := newMockStore()
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	store.Transactions.On("FindByID", mock.Anything, uint(1), uint(5)).
		Return(&model.Transaction{ID: 5, UserID: 1, CategoryID: 10, Amount: decimal.NewFromInt(3), Date: date, Description: strPtr("Bus")}, nil)
	store.Transactions.On("Update", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)

	txn, err := NewTransactionService(store, nil, nil).
		Update(context.Background(), alice, 5, TransactionInput{Amount: strPtr("4.25")})

	require.NoError(t, err)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("4.25")))
	assert.Equal(t, "Bus", *txn.Description)
	assert.True(t, txn.Date.Equal(date))
	assert.Equal(t, uint(10), txn.CategoryID)
}

func TestTransactionService_UpdateNoFields(t *testing.T) {
	store := newMockStore()

	_, err := NewTransactionService(store, nil, nil).Update(context.Background(), alice, 5, TransactionInput{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	store.Transactions.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestTransactionService_CreateForDeletedOwner(t *testing.T) {
	store := newMockStore()
	store.Categories.On("FindByID", mock.Anything, uint(1), uint(10)).Return(&model.Category{ID: 10, UserID: 1}, nil)
	store.Transactions.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(gorm.ErrForeignKeyViolated)

	_, err := NewTransactionService(store, nil, nil).Create(context.Background(), alice, validTransactionInput())

	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}

func TestTransactionService_GetNotOwned(t *testing.T) {
	store := newMockStore()
	store.Transactions.On("FindByID", mock.Anything, uint(1), uint(5)).Return(nil, gorm.ErrRecordNotFound)

	_, err := NewTransactionService(store, nil, nil).Get(context.Background(), alice, 5)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "transaction not found")
}
