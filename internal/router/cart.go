package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/models"
	"github.com/mvmart/go-api/pkg/mongo"
)

var (
	cartsStore   = mongo.NewCarts()
	catalogStore = mongo.NewCatalog()
)

// GetCart returns the buyer's cart. Items whose product has been removed or
// deactivated are pruned on read.
func GetCart(c *gin.Context) {
	cart, err := cartsStore.Get(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// AddToCart adds a product to the cart, snapshotting its current price.
func AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	productID, err := bson.ObjectIDFromHex(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product_id format", []global.ValidationError{
			{Field: "product_id", Message: "Must be a valid MongoDB ObjectID", Code: "invalid_format"},
		}))
		return
	}

	product, err := catalogStore.FindByID(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !product.IsActive {
		respondError(c, models.ErrProductUnavailable)
		return
	}
	if req.Quantity > product.Stock {
		respondError(c, models.ErrInsufficientStock)
		return
	}

	cart, err := cartsStore.AddItem(c.Request.Context(), currentUserID(c), product, req.Quantity, req.Size, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(cart))
}

// UpdateCartItem changes the quantity of a cart line; zero removes it.
func UpdateCartItem(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	cart, err := cartsStore.UpdateItem(c.Request.Context(), currentUserID(c), productID, req.Quantity, req.Size, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// RemoveFromCart drops a cart line regardless of quantity.
func RemoveFromCart(c *gin.Context) {
	productID, ok := objectIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := cartsStore.UpdateItem(c.Request.Context(), currentUserID(c), productID,
		0, c.Query("size"), c.Query("color"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(cart))
}

// ClearCart empties the buyer's cart.
func ClearCart(c *gin.Context) {
	if err := cartsStore.Clear(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"message": "Cart cleared"}))
}
