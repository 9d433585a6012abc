// Package progress contains the lesson progress endpoints. Both require a
// session.
package progress

import (
	"claudecode-es/backend/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ProgressFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	email := c.MustGet("email").(string)

	p, err := d.Users.GetProgress(c.Request.Context(), email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Error interno del servidor",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch progress", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"completedLessons": p.CompletedLessons,
		"currentLesson":    p.CurrentLesson,
	})
}
