package router

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/mongo"
	"github.com/mvmart/go-api/pkg/redis"
)

func HealthCheck(c *gin.Context) {
	db := mongo.GetDatabase()
	if err := db.Client().Ping(c, nil); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

// GetProductByID returns a product detail view with Redis caching. Stock on
// the cached copy is display data only; the order workflows always hit the
// conditional write on MongoDB.
func GetProductByID(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := redis.GetProductFromCache(ctx, c.Param("id"))
	if err == nil {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, global.SuccessResponse(product))
		return
	}

	productID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	product, err = catalogStore.FindByID(ctx, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	if cacheErr := redis.CacheSingleProduct(ctx, product); cacheErr != nil {
		log.Printf("Warning: Failed to cache product in Redis: %v", cacheErr)
	}

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}
