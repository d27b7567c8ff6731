package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvmart/go-api/pkg/global"
	"github.com/mvmart/go-api/pkg/models"
)

// respondError translates workflow errors into HTTP responses. Business-rule
// failures carry their reason to the caller; anything unrecognized is an
// infrastructure failure and stays opaque.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrCartEmpty),
		errors.Is(err, models.ErrProductUnavailable),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrOrderAlreadyPaid),
		errors.Is(err, models.ErrWrongPaymentMethod),
		errors.Is(err, models.ErrSignatureMismatch),
		errors.Is(err, models.ErrOrderNotCancellable),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrCouponInvalid):
		c.JSON(http.StatusBadRequest, global.ErrorResponse(err.Error(), nil))
	case errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrNotItemOwner):
		c.JSON(http.StatusForbidden, global.ErrorResponse(err.Error(), nil))
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrItemNotFound),
		errors.Is(err, models.ErrCouponNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse(err.Error(), nil))
	default:
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("internal error", nil))
	}
}
