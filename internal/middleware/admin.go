// admin.go guards the session administration endpoints.
//
// The admin key is configured once via environment and compared against a
// bcrypt hash computed at startup — the raw key never sits in memory longer
// than config loading, same principle as password hashing.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/Babaeti777/takeoff-api/internal/models"
)

// AdminAuth returns middleware that validates the X-Admin-Key header against
// the configured bcrypt hash. With no admin key configured the endpoints stay
// open — acceptable in dev, and config.Load refuses to start release builds
// without one.
func AdminAuth(adminKeyHash []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(adminKeyHash) == 0 {
			c.Next()
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing X-Admin-Key header",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword(adminKeyHash, []byte(key)); err != nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid admin key",
				Code:    http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// HashAdminKey bcrypt-hashes the configured admin key for later comparison.
func HashAdminKey(key string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
}
