package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/models"
	"github.com/mvmart/go-api/pkg/mongo"
)

var couponsStore = mongo.NewCoupons()

// ValidateCoupon previews a coupon against an order amount before checkout.
// It does not redeem anything; redemption happens inside order placement.
func ValidateCoupon(c *gin.Context) {
	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
			{Field: "request", Message: err.Error(), Code: "validation_error"},
		}))
		return
	}

	coupon, err := couponsStore.FindByCode(c.Request.Context(), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	check := coupon.IsValid(currentUserID(c), req.OrderAmount)
	if !check.Valid {
		c.JSON(http.StatusBadRequest, global.ErrorResponse(check.Reason, nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(models.ValidateCouponResponse{
		Code:        coupon.Code,
		Type:        coupon.Type,
		Value:       coupon.Value,
		Discount:    coupon.CalculateDiscount(req.OrderAmount),
		Description: coupon.Description,
	}))
}
