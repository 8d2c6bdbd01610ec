package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sakubijak/internal/model"
	"sakubijak/internal/service"
)

// CategoryHandler serves the requester's categories.
type CategoryHandler struct {
	svc service.CategoryService
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

// CategoryRequest is the body of create and update. Omitted fields are left
// unchanged on update.
type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100" example:"Food"`
	Description *string `json:"description" validate:"omitempty,max=255" example:"Meals and groceries"`
}

func (r CategoryRequest) input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Description: r.Description}
}

// CategoryEnvelope wraps a single category.
type CategoryEnvelope struct {
	Message  string           `json:"message,omitempty"`
	Category CategoryResponse `json:"category"`
}

// CategoryListResponse wraps a list of categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CategoryListResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	categories, err := h.svc.List(c.Request().Context(), r)
	if err != nil {
		return err
	}

	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = newCategoryResponse(&categories[i])
	}
	return c.JSON(http.StatusOK, CategoryListResponse{Categories: out})
}

// Create godoc
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := h.svc.Create(c.Request().Context(), r, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, categoryEnvelope("category created successfully", category))
}

// Get godoc
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} CategoryEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	category, err := h.svc.Get(c.Request().Context(), r, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryEnvelope("", category))
}

// Update godoc
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Fields to change"
// @Success 200 {object} CategoryEnvelope
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	r, err := requester(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	category, err := h.svc.Update(c.Request().Context(), r, id, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryEnvelope("category updated successfully", category))
}

// Delete godoc
// @Summary Delete category
// @Description Deletes the category and every transaction filed under it.
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
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

func categoryEnvelope(message string, category *model.Category) CategoryEnvelope {
	return CategoryEnvelope{Message: message, Category: newCategoryResponse(category)}
}
