package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sakubijak/internal/service"
)

// UserHandler serves the requester's own account.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UserEnvelope wraps a single user.
type UserEnvelope struct {
	User UserResponse `json:"user"`
}

// Me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserEnvelope
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	user, err := h.svc.Me(c.Request().Context(), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, UserEnvelope{User: newUserResponse(user)})
}

// DeleteMe godoc
// @Summary Delete current user
// @Description Deletes the account together with its categories and transactions.
// @Tags users
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMe(c.Request().Context(), r); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
