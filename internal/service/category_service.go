package service

import (
	"context"
	"fmt"
	"log/slog"

	"sakubijak/internal/auth"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
	"sakubijak/internal/repository"
)

// CategoryInput carries category fields. Nil fields are absent: on update
// they keep their stored value.
type CategoryInput struct {
	Name        *string
	Description *string
}

// CategoryService manages the requester's categories.
type CategoryService interface {
	Create(ctx context.Context, requester auth.Requester, in CategoryInput) (*model.Category, error)
	List(ctx context.Context, requester auth.Requester) ([]model.Category, error)
	Get(ctx context.Context, requester auth.Requester, id uint) (*model.Category, error)
	Update(ctx context.Context, requester auth.Requester, id uint, in CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, requester auth.Requester, id uint) error
}

type categoryService struct {
	store     repository.Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewCategoryService creates a category service.
func NewCategoryService(store repository.Store, publisher events.Publisher, logger *slog.Logger) CategoryService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryService{store: store, publisher: publisher, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, requester auth.Requester, in CategoryInput) (*model.Category, error) {
	name, err := requiredText("name", deref(in.Name), maxCategoryName)
	if err != nil {
		return nil, err
	}
	description, err := optionalText("description", in.Description, maxDescription)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Description: description,
		UserID:      requester.UserID,
	}
	err = s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		return tx.Categories.Create(ctx, category)
	})
	if err != nil {
		return nil, wrapInsert("create category", err)
	}

	s.logger.Debug("category created", log.FieldOperation, log.OpCreate, log.FieldUserID, requester.UserID, log.FieldEntityID, category.ID)
	s.publisher.Publish(ctx, events.New(events.CategoryCreated, requester.UserID, category.ID))
	return category, nil
}

func (s *categoryService) List(ctx context.Context, requester auth.Requester) ([]model.Category, error) {
	var categories []model.Category
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		categories, err = tx.Categories.List(ctx, requester.UserID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, requester auth.Requester, id uint) (*model.Category, error) {
	var category *model.Category
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		category, err = tx.Categories.FindByID(ctx, requester.UserID, id)
		return err
	})
	if err != nil {
		return nil, notFound(err, "category")
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, requester auth.Requester, id uint, in CategoryInput) (*model.Category, error) {
	if in.Name == nil && in.Description == nil {
		return nil, errNoChanges
	}
	var name string
	if in.Name != nil {
		var err error
		if name, err = requiredText("name", *in.Name, maxCategoryName); err != nil {
			return nil, err
		}
	}
	description, err := optionalText("description", in.Description, maxDescription)
	if err != nil {
		return nil, err
	}

	var category *model.Category
	err = s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		category, err = tx.Categories.FindByID(ctx, requester.UserID, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			category.Name = name
		}
		if in.Description != nil {
			category.Description = description
		}
		return tx.Categories.Update(ctx, category)
	})
	if err != nil {
		return nil, notFound(err, "category")
	}

	s.logger.Debug("category updated", log.FieldOperation, log.OpUpdate, log.FieldUserID, requester.UserID, log.FieldEntityID, category.ID)
	s.publisher.Publish(ctx, events.New(events.CategoryUpdated, requester.UserID, category.ID))
	return category, nil
}

// Delete removes the category and, through the cascade, its transactions.
func (s *categoryService) Delete(ctx context.Context, requester auth.Requester, id uint) error {
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		return tx.Categories.Delete(ctx, requester.UserID, id)
	})
	if err != nil {
		return notFound(err, "category")
	}

	s.logger.Debug("category deleted", log.FieldOperation, log.OpDelete, log.FieldUserID, requester.UserID, log.FieldEntityID, id)
	s.publisher.Publish(ctx, events.New(events.CategoryDeleted, requester.UserID, id))
	return nil
}
