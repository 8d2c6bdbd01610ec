package auth

import (
	"github.com/labstack/echo/v4"

	"sakubijak/internal/errors"
)

// Permission names an operation class a protected route requires.
type Permission string

const (
	// PermViewSelf allows reading the requester's own rows.
	PermViewSelf Permission = "view_self"
	// PermEditSelf allows creating, changing and deleting the requester's own rows.
	PermEditSelf Permission = "edit_self"
)

// Valid reports whether p is part of the fixed vocabulary.
func (p Permission) Valid() bool {
	return p == PermViewSelf || p == PermEditSelf
}

// RequirePermission rejects the request with 403 before the handler runs
// unless a requester holding p was resolved.
func RequirePermission(p Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requester, ok := RequesterFrom(c)
			if !ok || !requester.Has(p) {
				return errors.ErrForbidden
			}
			return next(c)
		}
	}
}
