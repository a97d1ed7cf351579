package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/loomshop/loomshop-backend/internal/middleware"
	"github.com/loomshop/loomshop-backend/pkg/redis"
)

type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// Logout revokes the presented token for its remaining lifetime. Sessions
// live in the identity service; this only stops the token from being
// replayed against this backend.
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	token := middleware.GetToken(c)
	ttl := middleware.GetTokenTTL(c)
	if token != "" && ttl > 0 {
		if err := redis.BlacklistToken(c.Request.Context(), token, ttl); err != nil {
			log.Error("Failed to blacklist token", err, map[string]interface{}{
				"user_id": middleware.GetUserID(c),
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to log out",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out",
	})
}
