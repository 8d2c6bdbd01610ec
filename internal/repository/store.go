package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Tx bundles the repositories bound to one database transaction. It is only
// valid inside the WithinTransaction callback that produced it.
type Tx struct {
	Users        UserRepository
	Categories   CategoryRepository
	Transactions TransactionRepository
	Reports      ReportRepository
}

// Store opens units of work over the relational store.
type Store interface {
	// WithinTransaction runs fn inside a transaction, committing when fn
	// returns nil and rolling back on error or panic.
	WithinTransaction(ctx context.Context, fn func(tx *Tx) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore builds a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newTx(tx))
	})
}

func newTx(db *gorm.DB) *Tx {
	return &Tx{
		Users:        &userRepository{db: db},
		Categories:   &categoryRepository{db: db},
		Transactions: &transactionRepository{db: db},
		Reports:      &reportRepository{db: db},
	}
}

// requireAffected turns a write that touched no row into gorm.ErrRecordNotFound.
func requireAffected(res *gorm.DB, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
