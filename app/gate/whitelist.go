// Package gate contains the endpoints the site asks before showing
// protected content
package gate

import (
	"claudecode-es/backend/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type whitelistBody struct {
	Email string `json:"email" binding:"required"`
}

func GateWhitelist(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data whitelistBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "El email es obligatorio",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hasAccess": d.Whitelist.Contains(data.Email),
	})
}
