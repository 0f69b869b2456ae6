// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"levelup/internal/delivery/http/middleware"
	"levelup/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	OrderHandler      *handler.OrderHandler
	RedemptionHandler *handler.RedemptionHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	orderHandler      *handler.OrderHandler
	redemptionHandler *handler.RedemptionHandler
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		orderHandler:      params.OrderHandler,
		redemptionHandler: params.RedemptionHandler,
		authMiddleware:    params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
	}

	// Order routes require authentication; status changes are staff-only.
	orderGroup := e.Group("/orders")
	orderGroup.Use(r.authMiddleware.Authenticate)
	{
		orderGroup.POST("", r.orderHandler.CreateOrder)
		orderGroup.GET("", r.orderHandler.ListOrders)
		orderGroup.GET("/:id", r.orderHandler.GetOrder)
		orderGroup.PATCH("/:id", r.orderHandler.UpdateOrder, r.authMiddleware.RequireRole("admin"))
	}

	// Redemption routes mirror the order surface.
	redemptionGroup := e.Group("/redemptions")
	redemptionGroup.Use(r.authMiddleware.Authenticate)
	{
		redemptionGroup.POST("", r.redemptionHandler.CreateRedemption)
		redemptionGroup.GET("", r.redemptionHandler.ListRedemptions)
		redemptionGroup.GET("/:id", r.redemptionHandler.GetRedemption)
		redemptionGroup.PATCH("/:id", r.redemptionHandler.UpdateRedemption, r.authMiddleware.RequireRole("admin"))
	}
}
