package auth

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthLogout always clears the cookie, even when the session couldn't be
// deleted from the store
func AuthLogout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := d.Sessions.Destroy(c.Request.Context(), token); err != nil {
			zap.L().Error("Failed to destroy session", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	d.SetCookie(c, middleware.SessionCookie, "", -1, true)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
