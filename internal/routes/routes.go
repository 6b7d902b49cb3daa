package routes

import (
	"github.com/gin-gonic/gin"

	"lokali_back_end/internal/handlers/order"
	"lokali_back_end/internal/middleware"
)

func RegisterRoutes(r *gin.Engine, orderHandler *order.Handler) {
	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Commandes : tout passe derrière le JWT du service d'identité
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/buyer", orderHandler.GetBuyerOrders)
		orders.GET("/seller", orderHandler.GetSellerOrders)
		orders.GET("/:id", orderHandler.GetOrderByID)
		orders.PUT("/:id/phone", orderHandler.UpdatePhoneNumber)
		orders.GET("/:id/ws", orderHandler.OrderEventsWebSocket)

		// Workflow de confirmation de livraison
		orders.POST("/:id/generate-otp", middleware.GenerateOTPRateLimit(), orderHandler.GenerateOTP)
		orders.POST("/verify-otp", middleware.VerifyOTPRateLimit(), orderHandler.VerifyOTP)
	}
}
