package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/internal/checkout"
	"github.com/mvmart/go-api/pkg/global"
)

type createPaymentOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// CreatePaymentOrder registers a payment intent with the gateway for an
// order awaiting gateway payment.
func CreatePaymentOrder(c *gin.Context) {
	var req createPaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "order_id", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	orderID, err := bson.ObjectIDFromHex(req.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid order_id format", []global.ValidationError{
			{Field: "order_id", Message: "Must be a valid MongoDB ObjectID", Code: "invalid_format"},
		}))
		return
	}

	gatewayOrder, err := Checkout.CreateGatewayOrder(c.Request.Context(), currentUserID(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gatewayOrder))
}

// VerifyPayment settles a gateway payment from the provider's callback data.
// Safe to call more than once for the same order.
func VerifyPayment(c *gin.Context) {
	var req checkout.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	order, err := Checkout.VerifyPayment(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}
