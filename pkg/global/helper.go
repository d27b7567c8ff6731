package global

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"
)

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func GetMongoURI() string {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI is not set in environment variables")
		os.Exit(1)
	}
	return mongoURI
}

func GetDatabaseName() string {
	dbName := GetEnvOrDefault("MONGODB_DATABASE", "mvmart")
	return dbName
}

// GetFreeShippingThreshold returns the subtotal at which shipping is waived entirely.
func GetFreeShippingThreshold() float64 {
	return GetEnvFloatOrDefault("FREE_SHIPPING_THRESHOLD", 499)
}

// GetDefaultShippingCost returns the per-unit charge used when a product
// does not carry its own shipping cost.
func GetDefaultShippingCost() float64 {
	return GetEnvFloatOrDefault("DEFAULT_SHIPPING_COST", 40)
}
