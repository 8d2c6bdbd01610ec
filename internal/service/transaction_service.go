package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"sakubijak/internal/auth"
	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/events"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
	"sakubijak/internal/repository"
)

// TransactionInput carries transaction fields as received. Nil fields are
// absent: Create requires all of them, Update keeps the stored value.
type TransactionInput struct {
	Description *string
	Amount      *string
	Date        *string
	CategoryID  *string
}

// TransactionQuery holds the raw List filters. Empty strings do not filter.
type TransactionQuery struct {
	FromDate   string
	ToDate     string
	CategoryID string
}

// TransactionService manages the requester's transactions.
type TransactionService interface {
	Create(ctx context.Context, requester auth.Requester, in TransactionInput) (*model.Transaction, error)
	List(ctx context.Context, requester auth.Requester, query TransactionQuery) ([]model.Transaction, error)
	Get(ctx context.Context, requester auth.Requester, id uint) (*model.Transaction, error)
	Update(ctx context.Context, requester auth.Requester, id uint, in TransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, requester auth.Requester, id uint) error
}

var errForeignCategory = apperrors.Validation("category_id does not reference one of your categories")

type transactionService struct {
	store     repository.Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewTransactionService creates a transaction service.
func NewTransactionService(store repository.Store, publisher events.Publisher, logger *slog.Logger) TransactionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &transactionService{store: store, publisher: publisher, logger: logger}
}

func (s *transactionService) Create(ctx context.Context, requester auth.Requester, in TransactionInput) (*model.Transaction, error) {
	description, err := requiredText("description", deref(in.Description), maxDescription)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(deref(in.Amount))
	if err != nil {
		return nil, err
	}
	date, err := parseDate("date", deref(in.Date))
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID("category_id", deref(in.CategoryID))
	if err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		Description: &description,
		Amount:      amount,
		Date:        date,
		UserID:      requester.UserID,
		CategoryID:  categoryID,
	}
	err = s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		if err := requireOwnedCategory(ctx, tx, requester.UserID, categoryID); err != nil {
			return err
		}
		return tx.Transactions.Create(ctx, txn)
	})
	if err != nil {
		return nil, wrapInsert("create transaction", err)
	}

	s.logger.Debug("transaction created", log.FieldOperation, log.OpCreate, log.FieldUserID, requester.UserID, log.FieldEntityID, txn.ID)
	s.publisher.Publish(ctx, events.New(events.TransactionCreated, requester.UserID, txn.ID))
	return txn, nil
}

// List returns the requester's transactions newest first. A category filter
// naming a category the requester does not own is ignored.
func (s *transactionService) List(ctx context.Context, requester auth.Requester, query TransactionQuery) ([]model.Transaction, error) {
	var filter repository.TransactionFilter
	if strings.TrimSpace(query.FromDate) != "" {
		from, err := parseDate("from_date", query.FromDate)
		if err != nil {
			return nil, err
		}
		filter.From = &from
	}
	if strings.TrimSpace(query.ToDate) != "" {
		to, err := parseDate("to_date", query.ToDate)
		if err != nil {
			return nil, err
		}
		filter.To = &to
	}
	var categoryID uint
	if strings.TrimSpace(query.CategoryID) != "" {
		id, err := parseID("category_id", query.CategoryID)
		if err != nil {
			return nil, err
		}
		categoryID = id
	}

	var txns []model.Transaction
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		if categoryID != 0 {
			err := requireOwnedCategory(ctx, tx, requester.UserID, categoryID)
			switch {
			case err == nil:
				filter.CategoryID = &categoryID
			case !errors.Is(err, errForeignCategory):
				return err
			}
		}
		var err error
		txns, err = tx.Transactions.List(ctx, requester.UserID, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

func (s *transactionService) Get(ctx context.Context, requester auth.Requester, id uint) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		txn, err = tx.Transactions.FindByID(ctx, requester.UserID, id)
		return err
	})
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	return txn, nil
}

func (s *transactionService) Update(ctx context.Context, requester auth.Requester, id uint, in TransactionInput) (*model.Transaction, error) {
	if in.Description == nil && in.Amount == nil && in.Date == nil && in.CategoryID == nil {
		return nil, errNoChanges
	}
	var patch model.Transaction
	if in.Description != nil {
		description, err := requiredText("description", *in.Description, maxDescription)
		if err != nil {
			return nil, err
		}
		patch.Description = &description
	}
	if in.Amount != nil {
		amount, err := parseAmount(*in.Amount)
		if err != nil {
			return nil, err
		}
		patch.Amount = amount
	}
	if in.Date != nil {
		date, err := parseDate("date", *in.Date)
		if err != nil {
			return nil, err
		}
		patch.Date = date
	}
	if in.CategoryID != nil {
		categoryID, err := parseID("category_id", *in.CategoryID)
		if err != nil {
			return nil, err
		}
		patch.CategoryID = categoryID
	}

	var txn *model.Transaction
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		txn, err = tx.Transactions.FindByID(ctx, requester.UserID, id)
		if err != nil {
			return err
		}
		if patch.CategoryID != 0 && patch.CategoryID != txn.CategoryID {
			if err := requireOwnedCategory(ctx, tx, requester.UserID, patch.CategoryID); err != nil {
				return err
			}
			txn.CategoryID = patch.CategoryID
			txn.Category = nil
		}
		if patch.Description != nil {
			txn.Description = patch.Description
		}
		if in.Amount != nil {
			txn.Amount = patch.Amount
		}
		if in.Date != nil {
			txn.Date = patch.Date
		}
		return tx.Transactions.Update(ctx, txn)
	})
	if err != nil {
		return nil, notFound(err, "transaction")
	}

	s.logger.Debug("transaction updated", log.FieldOperation, log.OpUpdate, log.FieldUserID, requester.UserID, log.FieldEntityID, txn.ID)
	s.publisher.Publish(ctx, events.New(events.TransactionUpdated, requester.UserID, txn.ID))
	return txn, nil
}

func (s *transactionService) Delete(ctx context.Context, requester auth.Requester, id uint) error {
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		return tx.Transactions.Delete(ctx, requester.UserID, id)
	})
	if err != nil {
		return notFound(err, "transaction")
	}

	s.logger.Debug("transaction deleted", log.FieldOperation, log.OpDelete, log.FieldUserID, requester.UserID, log.FieldEntityID, id)
	s.publisher.Publish(ctx, events.New(events.TransactionDeleted, requester.UserID, id))
	return nil
}

// requireOwnedCategory fails with a validation error unless categoryID
// names a category owned by ownerID.
func requireOwnedCategory(ctx context.Context, tx *repository.Tx, ownerID, categoryID uint) error {
	_, err := tx.Categories.FindByID(ctx, ownerID, categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errForeignCategory
	}
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}
