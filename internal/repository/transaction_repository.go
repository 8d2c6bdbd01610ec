package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sakubijak/internal/model"
)

// TransactionFilter narrows List. Nil fields do not filter.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	CategoryID *uint
	Limit      int
}

// TransactionRepository is ownership-scoped like CategoryRepository. Rows are
// returned with their Category loaded.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	List(ctx context.Context, ownerID uint, filter TransactionFilter) ([]model.Transaction, error)
	FindByID(ctx context.Context, ownerID, id uint) (*model.Transaction, error)
	Update(ctx context.Context, txn *model.Transaction) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

func (r *transactionRepository) owned(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Joins("Category").Where("transactions.user_id = ?", ownerID)
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(txn).Error; err != nil {
		return err
	}
	return r.reload(ctx, txn)
}

// List orders newest first: by date, then creation time, then id.
func (r *transactionRepository) List(ctx context.Context, ownerID uint, filter TransactionFilter) ([]model.Transaction, error) {
	q := r.owned(ctx, ownerID)
	if filter.From != nil {
		q = q.Where("transactions.date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("transactions.date <= ?", *filter.To)
	}
	if filter.CategoryID != nil {
		q = q.Where("transactions.category_id = ?", *filter.CategoryID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var txns []model.Transaction
	err := q.Order("transactions.date DESC").
		Order("transactions.created_at DESC").
		Order("transactions.id DESC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepository) FindByID(ctx context.Context, ownerID, id uint) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.owned(ctx, ownerID).Where("transactions.id = ?", id).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Update writes the mutable columns back, scoped by the owner, and reloads
// the row with its category.
func (r *transactionRepository) Update(ctx context.Context, txn *model.Transaction) error {
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("transactions.id = ? AND transactions.user_id = ?", txn.ID, txn.UserID).
		Updates(map[string]interface{}{
			"description": txn.Description,
			"amount":      txn.Amount,
			"date":        txn.Date,
			"category_id": txn.CategoryID,
			"updated_at":  r.db.NowFunc(),
		}).Error
	if err != nil {
		return err
	}
	return r.reload(ctx, txn)
}

func (r *transactionRepository) Delete(ctx context.Context, ownerID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("transactions.id = ? AND transactions.user_id = ?", id, ownerID).
		Delete(&model.Transaction{})
	return requireAffected(res, "delete transaction")
}

func (r *transactionRepository) reload(ctx context.Context, txn *model.Transaction) error {
	fresh, err := r.FindByID(ctx, txn.UserID, txn.ID)
	if err != nil {
		return err
	}
	*txn = *fresh
	return nil
}
