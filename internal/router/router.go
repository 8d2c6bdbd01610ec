package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"sakubijak/internal/auth"
	"sakubijak/internal/config"
	apperrors "sakubijak/internal/errors"
	"sakubijak/internal/handler"
	"sakubijak/internal/log"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Categories   *handler.CategoryHandler
	Transactions *handler.TransactionHandler
	Dashboard    *handler.DashboardHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *log.Logger,
	authenticator *auth.Authenticator,
	h Handlers,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger.Logger)
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(log.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", authenticator.Middleware())
	view := auth.RequirePermission(auth.PermViewSelf)
	edit := auth.RequirePermission(auth.PermEditSelf)

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)

	api.POST("/auth/logout", h.Auth.Logout, edit)

	api.GET("/users/me", h.Users.Me, view)
	api.DELETE("/users/me", h.Users.DeleteMe, edit)

	api.GET("/categories", h.Categories.List, view)
	api.POST("/categories", h.Categories.Create, edit)
	api.GET("/categories/:id", h.Categories.Get, view)
	api.PUT("/categories/:id", h.Categories.Update, edit)
	api.DELETE("/categories/:id", h.Categories.Delete, edit)

	api.GET("/transactions", h.Transactions.List, view)
	api.POST("/transactions", h.Transactions.Create, edit)
	api.GET("/transactions/:id", h.Transactions.Get, view)
	api.PUT("/transactions/:id", h.Transactions.Update, edit)
	api.DELETE("/transactions/:id", h.Transactions.Delete, edit)

	api.GET("/dashboard/summary", h.Dashboard.Summary, view)
	api.GET("/dashboard/chart", h.Dashboard.Chart, view)
}
