package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sakubijak/internal/model"
)

// CategoryRepository is ownership-scoped: every method takes the owner's id
// and applies it in the statement itself. A row owned by someone else is
// reported as gorm.ErrRecordNotFound, exactly like a missing row.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	List(ctx context.Context, ownerID uint) ([]model.Category, error)
	FindByID(ctx context.Context, ownerID, id uint) (*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, ownerID, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func (r *categoryRepository) owned(ctx context.Context, ownerID uint) *gorm.DB {
	return r.db.WithContext(ctx).Where("categories.user_id = ?", ownerID)
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error
}

func (r *categoryRepository) List(ctx context.Context, ownerID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.owned(ctx, ownerID).Order("categories.name ASC").Order("categories.id ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(ctx context.Context, ownerID, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.owned(ctx, ownerID).Where("categories.id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update writes name and description back, scoped by the category's owner,
// and reloads the row so timestamps reflect the store.
func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	err := r.owned(ctx, category.UserID).Model(&model.Category{}).
		Where("categories.id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"updated_at":  r.db.NowFunc(),
		}).Error
	if err != nil {
		return err
	}
	return r.owned(ctx, category.UserID).Where("categories.id = ?", category.ID).First(category).Error
}

// Delete removes the category; its transactions go with it through the
// foreign-key cascade.
func (r *categoryRepository) Delete(ctx context.Context, ownerID, id uint) error {
	res := r.owned(ctx, ownerID).Where("categories.id = ?", id).Delete(&model.Category{})
	return requireAffected(res, "delete category")
}
