package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sakubijak/internal/db"
	"sakubijak/internal/model"
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store Store
	repos *Tx
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.OpenSQLiteMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &fixture{t: t, ctx: context.Background(), store: NewStore(gormDB), repos: newTx(gormDB)}
}

func (f *fixture) user(email string) *model.User {
	f.t.Helper()
	u := &model.User{Name: "User " + email, Email: email, PasswordHash: "hash"}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, u))
	return u
}

func (f *fixture) category(owner *model.User, name string) *model.Category {
	f.t.Helper()
	c := &model.Category{Name: name, UserID: owner.ID}
	require.NoError(f.t, f.repos.Categories.Create(f.ctx, c))
	return c
}

func (f *fixture) transaction(owner *model.User, cat *model.Category, amount string, date string) *model.Transaction {
	f.t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(f.t, err)
	desc := "spent " + amount
	txn := &model.Transaction{
		Description: &desc,
		Amount:      decimal.RequireFromString(amount),
		Date:        d,
		UserID:      owner.ID,
		CategoryID:  cat.ID,
	}
	require.NoError(f.t, f.repos.Transactions.Create(f.ctx, txn))
	return txn
}

func TestCategoryRepository_OwnershipScope(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	food := f.category(alice, "Food")

	found, err := f.repos.Categories.FindByID(f.ctx, alice.ID, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food", found.Name)

	_, err = f.repos.Categories.FindByID(f.ctx, bob.ID, food.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = f.repos.Categories.FindByID(f.ctx, alice.ID, food.ID+100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = f.repos.Categories.Delete(f.ctx, bob.ID, food.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	list, err := f.repos.Categories.List(f.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCategoryRepository_ListOrderedByName(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	f.category(alice, "Transport")
	f.category(alice, "Food")
	f.category(alice, "Bills")

	list, err := f.repos.Categories.List(f.ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Bills", "Food", "Transport"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestCategoryRepository_Update(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	food := f.category(alice, "Food")

	desc := "groceries"
	food.Name = "Groceries"
	food.Description = &desc
	require.NoError(t, f.repos.Categories.Update(f.ctx, food))

	found, err := f.repos.Categories.FindByID(f.ctx, alice.ID, food.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", found.Name)
	require.NotNil(t, found.Description)
	assert.Equal(t, "groceries", *found.Description)
}

func TestTransactionRepository_ListOrderAndFilters(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	food := f.category(alice, "Food")
	transport := f.category(alice, "Transport")
	bobCat := f.category(bob, "Bob")

	older := f.transaction(alice, food, "10.00", "2026-09-30")
	first := f.transaction(alice, transport, "20.00", "2026-10-01")
	second := f.transaction(alice, food, "30.00", "2026-10-01")
	f.transaction(bob, bobCat, "99.00", "2026-10-01")

	all, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{second.ID, first.ID, older.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "Food", all[0].CategoryName())

	from, _ := model.ParseDate("2026-10-01")
	inOctober, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{From: &from})
	require.NoError(t, err)
	assert.Len(t, inOctober, 2)

	to, _ := model.ParseDate("2026-09-30")
	inSeptember, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{To: &to})
	require.NoError(t, err)
	require.Len(t, inSeptember, 1)
	assert.Equal(t, older.ID, inSeptember[0].ID)

	foodOnly, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{CategoryID: &food.ID})
	require.NoError(t, err)
	assert.Len(t, foodOnly, 2)

	limited, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second.ID, limited[0].ID)
}

func TestTransactionRepository_RoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	food := f.category(alice, "Food")
	created := f.transaction(alice, food, "15.50", "2026-10-17")

	found, err := f.repos.Transactions.FindByID(f.ctx, alice.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "spent 15.50", *found.Description)
	assert.True(t, decimal.RequireFromString("15.50").Equal(found.Amount))
	assert.Equal(t, "2026-10-17", found.DateString())
	assert.Equal(t, "Food", found.CategoryName())
}

func TestTransactionRepository_UpdateAndDeleteScoped(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	food := f.category(alice, "Food")
	transport := f.category(alice, "Transport")
	txn := f.transaction(alice, food, "15.50", "2026-10-17")

	txn.Amount = decimal.RequireFromString("20.25")
	txn.CategoryID = transport.ID
	require.NoError(t, f.repos.Transactions.Update(f.ctx, txn))
	assert.Equal(t, "Transport", txn.CategoryName())
	assert.True(t, decimal.RequireFromString("20.25").Equal(txn.Amount))

	assert.ErrorIs(t, f.repos.Transactions.Delete(f.ctx, bob.ID, txn.ID), gorm.ErrRecordNotFound)
	require.NoError(t, f.repos.Transactions.Delete(f.ctx, alice.ID, txn.ID))
	assert.ErrorIs(t, f.repos.Transactions.Delete(f.ctx, alice.ID, txn.ID), gorm.ErrRecordNotFound)
}

func TestCascadeDeletes(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	food := f.category(alice, "Food")
	transport := f.category(alice, "Transport")
	f.transaction(alice, food, "1.00", "2026-10-01")
	kept := f.transaction(alice, transport, "2.00", "2026-10-01")

	require.NoError(t, f.repos.Categories.Delete(f.ctx, alice.ID, food.ID))
	remaining, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)

	require.NoError(t, f.repos.Users.Delete(f.ctx, alice.ID))
	cats, err := f.repos.Categories.List(f.ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)
	txns, err := f.repos.Transactions.List(f.ctx, alice.ID, TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	f := newFixture(t)
	f.user("alice@example.com")

	err := f.repos.Users.Create(f.ctx, &model.User{Name: "Dup", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestReportRepository(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	bob := f.user("bob@example.com")
	food := f.category(alice, "Food")
	transport := f.category(alice, "Transport")
	bobCat := f.category(bob, "Bob")

	f.transaction(alice, food, "15.50", "2026-10-17")
	f.transaction(alice, transport, "25.00", "2026-10-16")
	f.transaction(alice, food, "100.00", "2026-09-30")
	f.transaction(bob, bobCat, "500.00", "2026-10-10")

	from, to := model.MonthRange(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))

	total, err := f.repos.Reports.TotalAmount(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, "40.5", total.String())

	count, err := f.repos.Reports.Count(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	totals, err := f.repos.Reports.TotalsByCategory(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Transport", totals[0].Name)
	assert.Equal(t, "25", totals[0].Total.String())
	assert.Equal(t, "Food", totals[1].Name)
	assert.Equal(t, food.ID, totals[1].CategoryID)
}

func TestReportRepository_EqualTotalsOrderedByCategoryID(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	first := f.category(alice, "Zeta")
	second := f.category(alice, "Alpha")
	f.transaction(alice, second, "10.00", "2026-10-02")
	f.transaction(alice, first, "10.00", "2026-10-03")

	from, to := model.MonthRange(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	totals, err := f.repos.Reports.TotalsByCategory(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, first.ID, totals[0].CategoryID)
}

func TestReportRepository_Empty(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice@example.com")
	from, to := model.MonthRange(time.Now())

	total, err := f.repos.Reports.TotalAmount(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	totals, err := f.repos.Reports.TotalsByCategory(f.ctx, alice.ID, from, to)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestStore_WithinTransaction_RollsBack(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")

	err := f.store.WithinTransaction(f.ctx, func(tx *Tx) error {
		require.NoError(t, tx.Users.Create(f.ctx, &model.User{Name: "Tmp", Email: "tmp@example.com", PasswordHash: "x"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = f.repos.Users.FindByEmail(f.ctx, "tmp@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestStore_WithinTransaction_Commits(t *testing.T) {
	f := newFixture(t)

	err := f.store.WithinTransaction(f.ctx, func(tx *Tx) error {
		return tx.Users.Create(f.ctx, &model.User{Name: "Kept", Email: "kept@example.com", PasswordHash: "x"})
	})
	require.NoError(t, err)

	found, err := f.repos.Users.FindByEmail(f.ctx, "kept@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Kept", found.Name)
}
