package progress

import (
	"claudecode-es/backend/internal"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type completeBody struct {
	LessonID string `json:"lessonId" binding:"required,max=128"`
}

func ProgressComplete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	email := c.MustGet("email").(string)

	var data completeBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Falta el identificador de la lección",
			"requestID": requestID,
		})
		return
	}

	p, err := d.Users.MarkLessonComplete(c.Request.Context(), email, data.LessonID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Error interno del servidor",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark lesson complete", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The session outlived the user record, nothing was saved
	completed := []string{}
	if p != nil {
		completed = p.CompletedLessons
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"completedLessons": completed,
	})
}
