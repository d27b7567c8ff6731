package router

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/models"
	"github.com/mvmart/go-api/pkg/mongo"
	"github.com/mvmart/go-api/pkg/redis"
)

var ordersStore = mongo.NewOrders()

// PlaceOrder converts the buyer's cart into an order.
func PlaceOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	order, err := Checkout.PlaceOrder(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateOrderProducts(c, order)
	c.JSON(http.StatusCreated, global.SuccessResponse(order))
}

// GetMyOrders lists the buyer's own orders, newest first.
func GetMyOrders(c *gin.Context) {
	userID := currentUserID(c)
	page, limit := pageParams(c)

	orders, pagination, err := ordersStore.List(c.Request.Context(), mongo.OrderFilter{
		UserID: &userID,
		Status: c.Query("status"),
	}, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"orders":     orders,
		"pagination": pagination,
	}))
}

// GetSellerOrders lists orders containing at least one of the seller's items.
func GetSellerOrders(c *gin.Context) {
	sellerID := currentUserID(c)
	page, limit := pageParams(c)

	orders, pagination, err := ordersStore.List(c.Request.Context(), mongo.OrderFilter{
		SellerID: &sellerID,
		Status:   c.Query("status"),
	}, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"orders":     orders,
		"pagination": pagination,
	}))
}

// GetAllOrders is the admin listing with status filter and pagination.
func GetAllOrders(c *gin.Context) {
	page, limit := pageParams(c)

	orders, pagination, err := ordersStore.List(c.Request.Context(), mongo.OrderFilter{
		Status: c.Query("status"),
	}, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"orders":     orders,
		"pagination": pagination,
	}))
}

// GetOrderByID returns a single order to its buyer, to a seller with items
// in it, or to an admin.
func GetOrderByID(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ordersStore.FindByID(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	switch currentRole(c) {
	case "admin":
	case "seller":
		if len(order.SellerItems(userID)) == 0 {
			c.JSON(http.StatusForbidden, global.ErrorResponse("not your order", nil))
			return
		}
	default:
		if order.UserID != userID {
			c.JSON(http.StatusForbidden, global.ErrorResponse("not your order", nil))
			return
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// CancelOrder is the buyer-initiated order-wide cancellation.
func CancelOrder(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	order, err := Checkout.CancelOrder(c.Request.Context(), currentUserID(c), orderID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateOrderProducts(c, order)
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// UpdateOrderItemStatus applies a seller-driven fulfillment transition to one
// item of an order.
func UpdateOrderItemStatus(c *gin.Context) {
	orderID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := objectIDParam(c, "itemId")
	if !ok {
		return
	}

	var req models.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	order, err := Checkout.UpdateItemStatus(c.Request.Context(), currentUserID(c), orderID, itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Status == models.StatusCancelled {
		invalidateOrderProducts(c, order)
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// invalidateOrderProducts drops cached copies of every product whose stock
// just moved. Cache failures never fail the request.
func invalidateOrderProducts(c *gin.Context, order *models.Order) {
	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID.Hex())
	}
	if err := redis.InvalidateProducts(c.Request.Context(), ids); err != nil {
		log.Printf("Warning: Failed to invalidate product cache: %v", err)
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func objectIDParam(c *gin.Context, name string) (bson.ObjectID, bool) {
	objectID, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid "+name+" format", []global.ValidationError{
			{Field: name, Message: "Must be a valid MongoDB ObjectID", Code: "invalid_format"},
		}))
		return bson.ObjectID{}, false
	}
	return objectID, true
}
