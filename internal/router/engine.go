package router

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mvmart/go-api/internal/checkout"
)

var Router *gin.Engine

// Checkout is the shared workflow service the handlers call into.
var Checkout *checkout.Service

func InitEngine() {
	Router = gin.Default()
	if os.Getenv("ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	Router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-User-ID", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func InitializeRoutes(service *checkout.Service) {
	Checkout = service

	api := Router.Group("/api")
	{
		api.GET("/health", HealthCheck)

		products := api.Group("/products")
		{
			products.GET("/:id", GetProductByID)
		}

		cart := api.Group("/cart")
		cart.Use(IdentityMiddleware(), RequireRole("buyer"))
		{
			cart.GET("", GetCart)
			cart.POST("/items", AddToCart)
			cart.PUT("/items/:productId", UpdateCartItem)
			cart.DELETE("/items/:productId", RemoveFromCart)
			cart.DELETE("", ClearCart)
		}

		orders := api.Group("/orders")
		orders.Use(IdentityMiddleware())
		{
			orders.POST("", RequireRole("buyer"), PlaceOrder)
			orders.GET("/my", RequireRole("buyer"), GetMyOrders)
			orders.PUT("/:id/cancel", RequireRole("buyer"), CancelOrder)
			orders.GET("/seller/orders", RequireRole("seller"), GetSellerOrders)
			orders.PUT("/:id/item/:itemId/status", RequireRole("seller"), UpdateOrderItemStatus)
			orders.GET("/admin/all", RequireRole("admin"), GetAllOrders)
			orders.GET("/:id", GetOrderByID)
		}

		payments := api.Group("/payments")
		payments.Use(IdentityMiddleware(), RequireRole("buyer"))
		{
			payments.POST("/create-order", CreatePaymentOrder)
			payments.POST("/verify-payment", VerifyPayment)
		}

		coupons := api.Group("/coupons")
		coupons.Use(IdentityMiddleware(), RequireRole("buyer"))
		{
			coupons.POST("/validate", ValidateCoupon)
		}
	}
}
