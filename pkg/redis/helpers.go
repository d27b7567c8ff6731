package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mvmart/go-api/pkg/models"
)

// Product detail cache. Stock moves through conditional writes on MongoDB,
// so cached copies are treated as read-only display data with a short TTL
// and invalidated whenever an order commits or restores stock.

const productCacheTTL = 5 * time.Minute

func CacheSingleProduct(ctx context.Context, product *models.Product) error {
	client := RedisClient()
	defer client.Close()

	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", product.ID.Hex(), err)
	}

	productKey := fmt.Sprintf("product:%s", product.ID.Hex())
	if err := client.Set(ctx, productKey, productJSON, productCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache product %s: %w", product.ID.Hex(), err)
	}

	return nil
}

func GetProductFromCache(ctx context.Context, productID string) (*models.Product, error) {
	client := RedisClient()
	defer client.Close()

	productKey := fmt.Sprintf("product:%s", productID)
	productJSON, err := client.Get(ctx, productKey).Result()
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal([]byte(productJSON), &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

// InvalidateProducts drops the cached copies of the given products. Called
// after any stock movement so the display cache never outlives a sale by
// more than one request.
func InvalidateProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}

	client := RedisClient()
	defer client.Close()

	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, fmt.Sprintf("product:%s", id))
	}

	if err := client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product cache: %w", err)
	}
	return nil
}
