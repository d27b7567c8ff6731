package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/pkg/global"
)

// IdentityMiddleware binds the identity the upstream auth service injected.
// Token verification happens at the edge; this service only trusts the
// already-authenticated X-User-ID and X-User-Role headers.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("authentication required", nil))
			c.Abort()
			return
		}

		objectID, err := bson.ObjectIDFromHex(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, global.ErrorResponse("invalid user identity", []global.ValidationError{
				{Field: "X-User-ID", Message: "Must be a valid ObjectID", Code: "invalid_format"},
			}))
			c.Abort()
			return
		}

		c.Set("userID", objectID)
		c.Set("userRole", c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// RequireRole guards a route group to one role. Admins pass every guard.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("userRole")
		if userRole != role && userRole != "admin" {
			c.JSON(http.StatusForbidden, global.ErrorResponse("insufficient permissions", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) bson.ObjectID {
	id, _ := c.Get("userID")
	objectID, _ := id.(bson.ObjectID)
	return objectID
}

func currentRole(c *gin.Context) string {
	return c.GetString("userRole")
}
