// Package lead handles the free content email gate
package lead

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type captureBody struct {
	Email  string `json:"email" binding:"required"`
	Source string `json:"source" binding:"max=128"`
}

// LeadCapture stores the email when a database is configured and always
// sets the captured_email cookie the free gate looks for
func LeadCapture(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data captureBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "El email es obligatorio",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Introduce un email válido",
			"requestID": requestID,
		})
		return
	}

	email := validators.NormalizeEmail(data.Email)

	if d.Leads != nil {
		created, err := d.Leads.Capture(c.Request.Context(), email, data.Source)
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Introduce un email válido",
				"requestID": requestID,
			})
			return
		case err != nil:
			zap.L().Error("Failed to store lead", zap.Error(err), zap.String("requestID", requestID))
		case created:
			zap.L().Debug("New lead captured", zap.String("source", data.Source), zap.String("requestID", requestID))
		}
	}

	d.SetLongCookie(c, internal.CapturedEmailCookie, email, false)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}
