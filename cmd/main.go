package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mvmart/go-api/internal/checkout"
	"github.com/mvmart/go-api/internal/router"
	"github.com/mvmart/go-api/pkg/gateway"
	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/logging"
	"github.com/mvmart/go-api/pkg/mongo"
	"github.com/mvmart/go-api/pkg/notify"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	mongo.InitMongoDB()
	mongo.EnsureIndexesOnStartup()

	logger := logging.MustNewLogger("mvmart-api", global.GetEnvOrDefault("ENV", "development"))
	defer logger.Sync()

	service := checkout.NewService(
		mongo.NewTxn(),
		mongo.NewCarts(),
		mongo.NewCatalog(),
		mongo.NewCoupons(),
		mongo.NewOrders(),
		gateway.NewClientFromEnv(),
		notify.NewDispatcher(logger, notify.LogConfirmation(logger)),
		checkout.Config{
			FreeShippingThreshold: global.GetFreeShippingThreshold(),
			DefaultShippingCost:   global.GetDefaultShippingCost(),
			Currency:              global.GetEnvOrDefault("PAYMENT_CURRENCY", "INR"),
		},
		logger,
	)

	router.InitEngine()
	router.InitializeRoutes(service)

	port := global.GetEnvOrDefault("PORT", "8000")
	log.Printf("Server is running on port %s", port)

	if err := router.Router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
