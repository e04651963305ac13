// SPDX-License-Identifier: GPL-3.0-only

package routes

import (
	"laundrolink-server/commons"
	"laundrolink-server/handlers"
	"laundrolink-server/middlewares"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo, h *handlers.Handler) {
	commons.Logger.Debug("Registering routes")
	authLimiter := middlewares.AuthRateLimiter()
	ownerOnly := middlewares.RequireOwner("id")

	e.GET("/", h.HomeHandler)
	e.GET("/register", h.RegisterPageHandler)
	e.POST("/register", h.RegisterHandler)
	e.GET("/login", h.LoginPageHandler)
	e.POST("/login", h.LoginHandler, authLimiter)
	e.GET("/logout", h.LogoutHandler)
	e.GET("/owner_dashboard/:id", h.DashboardHandler, ownerOnly)
	e.POST("/owner_dashboard/:id", h.UpdateProviderHandler, ownerOnly)
	e.GET("/service/:id", h.ServicePageHandler)
	e.POST("/service/:id", h.RateServiceHandler)
	e.GET("/reviews/:id", h.AllReviewsHandler)
	e.GET("/request_service/:id", h.RequestServiceHandler)
	e.GET("/review/:token", h.LeaveReviewPageHandler)
	e.POST("/review/:token", h.LeaveReviewHandler)
	e.GET("/forgot-password", h.ForgotPasswordPageHandler)
	e.POST("/forgot-password", h.ForgotPasswordHandler, authLimiter)
	e.GET("/reset-password/:token", h.ResetPasswordPageHandler)
	e.POST("/reset-password/:token", h.ResetPasswordHandler)
	e.GET("/static/uploads/*", h.ServeUpload)
	e.GET("/healthz", h.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	commons.Logger.Info("Routes registered successfully")
}
