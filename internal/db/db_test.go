package db

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sakubijak/internal/config"
	"sakubijak/internal/model"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "plain file", dsn: "app.db", want: "app.db?_pragma=foreign_keys(1)"},
		{name: "existing query", dsn: "file:app.db?cache=shared", want: "file:app.db?cache=shared&_pragma=foreign_keys(1)"},
		{name: "already set", dsn: "app.db?_pragma=foreign_keys(0)", want: "app.db?_pragma=foreign_keys(0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.dsn))
		})
	}
}

func openFile(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "app.db")
	gormDB, err := Open(config.DriverSQLite, dsn, Options{LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(gormDB, config.DriverSQLite, dsn))
	return gormDB
}

func TestOpen_SQLiteFileEnforcesForeignKeys(t *testing.T) {
	gormDB := openFile(t)

	var enabled int
	require.NoError(t, gormDB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)
}

func TestOpen_SQLiteFileCascades(t *testing.T) {
	gormDB := openFile(t)

	user := &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, gormDB.Create(user).Error)
	food := &model.Category{Name: "Food", UserID: user.ID}
	require.NoError(t, gormDB.Create(food).Error)
	bills := &model.Category{Name: "Bills", UserID: user.ID}
	require.NoError(t, gormDB.Create(bills).Error)
	desc := "lunch"
	date, err := model.ParseDate("2025-03-01")
	require.NoError(t, err)
	require.NoError(t, gormDB.Create(&model.Transaction{
		Description: &desc, Amount: decimal.NewFromInt(1), Date: date, UserID: user.ID, CategoryID: food.ID,
	}).Error)

	require.NoError(t, gormDB.Delete(&model.Category{}, food.ID).Error)
	var txns int64
	require.NoError(t, gormDB.Model(&model.Transaction{}).Count(&txns).Error)
	assert.Zero(t, txns)

	require.NoError(t, gormDB.Delete(&model.User{}, user.ID).Error)
	var categories int64
	require.NoError(t, gormDB.Model(&model.Category{}).Count(&categories).Error)
	assert.Zero(t, categories)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", Options{})
	assert.Error(t, err)
}
