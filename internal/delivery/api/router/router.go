// Package router maps the REST API onto its handlers.
package router

import (
	"foodbridge/internal/delivery/api/middleware"
	"foodbridge/internal/delivery/api/router/handler"
	"foodbridge/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	DonationHandler *handler.DonationHandler
	ChatHandler     *handler.ChatHandler
	DeviceHandler   *handler.DeviceHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimiter
}

type router struct {
	authHandler     *handler.AuthHandler
	donationHandler *handler.DonationHandler
	chatHandler     *handler.ChatHandler
	deviceHandler   *handler.DeviceHandler
	authMiddleware  *middleware.AuthMiddleware
	rateLimiter     *middleware.RateLimiter
}

func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		donationHandler: params.DonationHandler,
		chatHandler:     params.ChatHandler,
		deviceHandler:   params.DeviceHandler,
		authMiddleware:  params.AuthMiddleware,
		rateLimiter:     params.RateLimiter,
	}
}

// RegisterRoutes mounts every endpoint under /api, plus /health.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	authenticated := r.authMiddleware.Authenticate
	restaurantOnly := r.authMiddleware.RequireRole(entity.RoleRestaurant)
	ngoOnly := r.authMiddleware.RequireRole(entity.RoleNGO)

	authGroup := api.Group("/auth", r.rateLimiter.Limit)
	{
		authGroup.POST("/register-ngo", r.authHandler.RegisterNGO)
		authGroup.POST("/register-restaurant", r.authHandler.RegisterRestaurant)
		authGroup.POST("/login-ngo", r.authHandler.LoginNGO)
		authGroup.POST("/login-restaurant", r.authHandler.LoginRestaurant)
		authGroup.POST("/google-auth", r.authHandler.GoogleAuth)
		authGroup.POST("/update-location", r.authHandler.UpdateLocation, authenticated)
		authGroup.GET("/ngos", r.authHandler.ListNGOs)
		authGroup.GET("/restaurants", r.authHandler.ListRestaurants)
	}

	// Reviews are public; every other donation route needs a session.
	donations := api.Group("/donations")
	donations.GET("/restaurant/:restaurantId/reviews", r.donationHandler.Reviews)
	{
		d := donations.Group("", authenticated)

		d.POST("/create", r.donationHandler.Create, restaurantOnly)
		d.GET("/requests", r.donationHandler.PendingRequests, restaurantOnly)
		d.POST("/accept/:id", r.donationHandler.Accept, restaurantOnly)
		d.POST("/reject/:id", r.donationHandler.Reject, restaurantOnly)
		d.GET("/history/restaurant", r.donationHandler.RestaurantHistory, restaurantOnly)

		d.GET("/available", r.donationHandler.Available, ngoOnly)
		d.POST("/request/:id", r.donationHandler.Request, ngoOnly)
		d.GET("/my-requests", r.donationHandler.MyRequests, ngoOnly)
		d.POST("/:id/rate", r.donationHandler.Rate, ngoOnly)
		d.GET("/history/ngo", r.donationHandler.NGOHistory, ngoOnly)

		d.POST("/complete/:id", r.donationHandler.Complete)
		d.GET("/:id/pickup-qr", r.donationHandler.PickupQR)
		d.POST("/migrate-user", r.donationHandler.MigrateUser)
	}

	chats := api.Group("/chats", authenticated)
	{
		chats.GET("/my-chats", r.chatHandler.MyChats)
		chats.GET("/:chatId", r.chatHandler.GetChat)
		chats.POST("/:chatId/mark-read", r.chatHandler.MarkRead)
		chats.POST("/:chatId/message", r.chatHandler.SendMessage)
	}

	devices := api.Group("/devices", authenticated)
	{
		devices.POST("", r.deviceHandler.RegisterDevice)
		devices.GET("", r.deviceHandler.GetDevices)
		devices.PUT("/:id/token", r.deviceHandler.UpdateFCMToken)
		devices.DELETE("/:id", r.deviceHandler.DeactivateDevice)
	}
}
