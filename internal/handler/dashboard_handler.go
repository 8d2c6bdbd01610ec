package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"sakubijak/internal/errors"
	"sakubijak/internal/model"
	"sakubijak/internal/service"
)

// DashboardHandler serves monthly spending aggregates.
type DashboardHandler struct {
	svc service.DashboardService
	now func() time.Time
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc, now: time.Now}
}

// TopCategoryResponse names the month's largest category.
type TopCategoryResponse struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// CategoryTotalResponse is one category's total for the month.
type CategoryTotalResponse struct {
	CategoryID uint    `json:"category_id"`
	Name       string  `json:"name"`
	Total      float64 `json:"total"`
}

// SummaryResponse is the dashboard body.
type SummaryResponse struct {
	TotalExpensesThisMonth     float64                 `json:"total_expenses_this_month"`
	LatestTransactions         []TransactionResponse   `json:"latest_transactions"`
	TopCategoryThisMonth       TopCategoryResponse     `json:"top_category_this_month"`
	TotalTransactionsThisMonth int64                   `json:"total_transactions_this_month"`
	ExpensesPerCategory        []CategoryTotalResponse `json:"expenses_per_category"`
}

func newSummaryResponse(s *model.Summary) SummaryResponse {
	top := TopCategoryResponse{Name: "N/A", Total: 0}
	if s.TopCategory != nil {
		top = TopCategoryResponse{Name: s.TopCategory.Name, Total: money(s.TopCategory.Total)}
	}

	perCategory := make([]CategoryTotalResponse, len(s.PerCategoryThisMonth))
	for i, t := range s.PerCategoryThisMonth {
		perCategory[i] = CategoryTotalResponse{
			CategoryID: t.CategoryID,
			Name:       t.Name,
			Total:      money(t.Total),
		}
	}

	return SummaryResponse{
		TotalExpensesThisMonth:     money(s.TotalThisMonth),
		LatestTransactions:         newTransactionResponses(s.LatestTransactions),
		TopCategoryThisMonth:       top,
		TotalTransactionsThisMonth: s.TransactionCount,
		ExpensesPerCategory:        perCategory,
	}
}

// Summary godoc
// @Summary Dashboard summary
// @Description Totals for the calendar month containing as_of (default today, UTC).
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param as_of query string false "Reference date, YYYY-MM-DD"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/summary [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	asOf, err := h.asOf(c)
	if err != nil {
		return err
	}

	summary, err := h.svc.Summary(c.Request().Context(), r, asOf)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSummaryResponse(summary))
}

// Chart godoc
// @Summary Dashboard chart
// @Description PNG pie chart of the month's expenses per category; 204 when the month is empty.
// @Tags dashboard
// @Produce png
// @Security BearerAuth
// @Param as_of query string false "Reference date, YYYY-MM-DD"
// @Success 200 {file} binary
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/chart [get]
func (h *DashboardHandler) Chart(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	asOf, err := h.asOf(c)
	if err != nil {
		return err
	}

	png, err := h.svc.Chart(c.Request().Context(), r, asOf)
	if err != nil {
		return err
	}
	if png == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (h *DashboardHandler) asOf(c echo.Context) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam("as_of"))
	if raw == "" {
		return h.now().UTC(), nil
	}
	t, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, errors.Validation("as_of must be a date in YYYY-MM-DD format")
	}
	return t, nil
}
