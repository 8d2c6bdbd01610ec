package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sakubijak/internal/auth"
	"sakubijak/internal/log"
	"sakubijak/internal/model"
	"sakubijak/internal/report"
	"sakubijak/internal/repository"
)

const latestTransactionsLimit = 5

// DashboardService aggregates a requester's spending for one calendar month.
type DashboardService interface {
	Summary(ctx context.Context, requester auth.Requester, asOf time.Time) (*model.Summary, error)
	// Chart renders the month's per-category totals as a PNG. It returns nil
	// when the month has no expenses.
	Chart(ctx context.Context, requester auth.Requester, asOf time.Time) ([]byte, error)
}

type dashboardService struct {
	store    repository.Store
	renderer *report.ChartRenderer
	logger   *slog.Logger
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(store repository.Store, renderer *report.ChartRenderer, logger *slog.Logger) DashboardService {
	if renderer == nil {
		renderer = report.NewChartRenderer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardService{store: store, renderer: renderer, logger: logger}
}

// Summary reads every figure inside one transaction so they agree with
// each other. The month is [first day of asOf's month, first day of the next).
func (s *dashboardService) Summary(ctx context.Context, requester auth.Requester, asOf time.Time) (*model.Summary, error) {
	from, to := model.MonthRange(asOf)
	summary := &model.Summary{}

	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		if summary.TotalThisMonth, err = tx.Reports.TotalAmount(ctx, requester.UserID, from, to); err != nil {
			return fmt.Errorf("total amount: %w", err)
		}
		if summary.TransactionCount, err = tx.Reports.Count(ctx, requester.UserID, from, to); err != nil {
			return fmt.Errorf("count: %w", err)
		}
		if summary.PerCategoryThisMonth, err = tx.Reports.TotalsByCategory(ctx, requester.UserID, from, to); err != nil {
			return fmt.Errorf("totals by category: %w", err)
		}
		summary.LatestTransactions, err = tx.Transactions.List(ctx, requester.UserID, repository.TransactionFilter{
			Limit: latestTransactionsLimit,
		})
		if err != nil {
			return fmt.Errorf("latest transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(summary.PerCategoryThisMonth) > 0 {
		top := summary.PerCategoryThisMonth[0]
		summary.TopCategory = &top
	}
	if summary.PerCategoryThisMonth == nil {
		summary.PerCategoryThisMonth = []model.CategoryTotal{}
	}
	if summary.LatestTransactions == nil {
		summary.LatestTransactions = []model.Transaction{}
	}
	s.logger.Debug("summary computed", log.FieldOperation, log.OpSummary, log.FieldUserID, requester.UserID, "transactions", summary.TransactionCount)
	return summary, nil
}

func (s *dashboardService) Chart(ctx context.Context, requester auth.Requester, asOf time.Time) ([]byte, error) {
	from, to := model.MonthRange(asOf)

	var totals []model.CategoryTotal
	err := s.store.WithinTransaction(ctx, func(tx *repository.Tx) error {
		var err error
		totals, err = tx.Reports.TotalsByCategory(ctx, requester.UserID, from, to)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}

	png, err := s.renderer.CategoryPie(totals, asOf)
	if err != nil {
		s.logger.Error("render chart failed", log.FieldUserID, requester.UserID, log.FieldError, err)
		return nil, err
	}
	return png, nil
}
