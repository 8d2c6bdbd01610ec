package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"sakubijak/internal/auth"
	"sakubijak/internal/errors"
	"sakubijak/internal/model"
)

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	UserID      uint      `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionResponse is the public view of a transaction.
type TransactionResponse struct {
	ID           uint      `json:"id"`
	Description  *string   `json:"description"`
	Amount       float64   `json:"amount"`
	Date         string    `json:"date" example:"2025-03-10"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	UserID       uint      `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func newCategoryResponse(c *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		UserID:      c.UserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func newTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           t.ID,
		Description:  t.Description,
		Amount:       money(t.Amount),
		Date:         t.DateString(),
		CategoryID:   t.CategoryID,
		CategoryName: t.CategoryName(),
		UserID:       t.UserID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func newTransactionResponses(txns []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = newTransactionResponse(&txns[i])
	}
	return out
}

// money renders an amount as a JSON number with at most two decimals.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// pathID reads a positive integer path parameter.
func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, errors.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// requester returns the identity resolved for this request.
func requester(c echo.Context) (auth.Requester, error) {
	r, ok := auth.RequesterFrom(c)
	if !ok {
		return auth.Requester{}, errors.ErrForbidden
	}
	return r, nil
}

// bind decodes the request body and runs struct validation.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.Validation("invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}
