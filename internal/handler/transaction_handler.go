package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"sakubijak/internal/model"
	"sakubijak/internal/service"
)

// TransactionHandler serves the requester's transactions.
type TransactionHandler struct {
	svc service.TransactionService
}

// NewTransactionHandler creates a transaction handler.
func NewTransactionHandler(svc service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

// TransactionRequest is the body of create and update. Amount and
// category_id accept JSON numbers or numeric strings. Omitted fields are
// left unchanged on update.
type TransactionRequest struct {
	Description *string      `json:"description" validate:"omitempty,max=255" example:"Lunch"`
	Amount      *json.Number `json:"amount" swaggertype:"string" example:"15.50"`
	Date        *string      `json:"date" validate:"omitempty,datetime=2006-01-02" example:"2025-03-10"`
	CategoryID  *json.Number `json:"category_id" swaggertype:"integer" example:"1"`
}

func (r TransactionRequest) input() service.TransactionInput {
	return service.TransactionInput{
		Description: r.Description,
		Amount:      numberString(r.Amount),
		Date:        r.Date,
		CategoryID:  numberString(r.CategoryID),
	}
}

func numberString(n *json.Number) *string {
	if n == nil {
		return nil
	}
	s := n.String()
	return &s
}

// TransactionEnvelope wraps a single transaction.
type TransactionEnvelope struct {
	Message     string              `json:"message,omitempty"`
	Transaction TransactionResponse `json:"transaction"`
}

// TransactionListResponse wraps a list of transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

// List godoc
// @Summary List transactions
// @Description Newest first. A category_id that is not one of the requester's categories is ignored.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param from_date query string false "Earliest date, YYYY-MM-DD"
// @Param to_date query string false "Latest date, YYYY-MM-DD"
// @Param category_id query int false "Category ID"
// @Success 200 {object} TransactionListResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}

	txns, err := h.svc.List(c.Request().Context(), r, service.TransactionQuery{
		FromDate:   c.QueryParam("from_date"),
		ToDate:     c.QueryParam("to_date"),
		CategoryID: c.QueryParam("category_id"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, TransactionListResponse{Transactions: newTransactionResponses(txns)})
}

// Create godoc
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} TransactionEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	var req TransactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	txn, err := h.svc.Create(c.Request().Context(), r, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, transactionEnvelope("transaction created successfully", txn))
}

// Get godoc
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	txn, err := h.svc.Get(c.Request().Context(), r, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactionEnvelope("", txn))
}

// Update godoc
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Fields to change"
// @Success 200 {object} TransactionEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req TransactionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	txn, err := h.svc.Update(c.Request().Context(), r, id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, transactionEnvelope("transaction updated successfully", txn))
}

// Delete godoc
// @Summary Delete transaction
// @Tags transactions
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.svc.Delete(c.Request().Context(), r, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func transactionEnvelope(message string, txn *model.Transaction) TransactionEnvelope {
	return TransactionEnvelope{Message: message, Transaction: newTransactionResponse(txn)}
}
