package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sakubijak/internal/model"
)

// ReportRepository aggregates a user's transactions over a half-open date
// range [from, to).
type ReportRepository interface {
	TotalAmount(ctx context.Context, ownerID uint, from, to time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, ownerID uint, from, to time.Time) (int64, error)
	TotalsByCategory(ctx context.Context, ownerID uint, from, to time.Time) ([]model.CategoryTotal, error)
}

type reportRepository struct {
	db *gorm.DB
}

func (r *reportRepository) inRange(ctx context.Context, ownerID uint, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transactions.user_id = ?", ownerID).
		Where("transactions.date >= ? AND transactions.date < ?", from, to)
}

func (r *reportRepository) TotalAmount(ctx context.Context, ownerID uint, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.inRange(ctx, ownerID, from, to).
		Select("COALESCE(SUM(transactions.amount), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

func (r *reportRepository) Count(ctx context.Context, ownerID uint, from, to time.Time) (int64, error) {
	var count int64
	if err := r.inRange(ctx, ownerID, from, to).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TotalsByCategory sums amounts per category, largest first. Equal sums are
// ordered by ascending category id.
func (r *reportRepository) TotalsByCategory(ctx context.Context, ownerID uint, from, to time.Time) ([]model.CategoryTotal, error) {
	var rows []model.CategoryTotal
	err := r.inRange(ctx, ownerID, from, to).
		Select("categories.id AS category_id, categories.name AS name, SUM(transactions.amount) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Group("categories.id, categories.name").
		Order("total DESC").
		Order("categories.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, nil
}
