// Package purchase answers whether an email bought a paid module
package purchase

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkBody struct {
	Email   string `json:"email" binding:"required"`
	Product string `json:"product" binding:"required"`
}

// PurchaseCheck denies instead of failing when the store is unreachable
func PurchaseCheck(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data checkBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "El email y el producto son obligatorios",
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

	ok, err := d.Purchases.HasPurchased(c.Request.Context(), data.Product, data.Email)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProduct) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Producto desconocido",
				"requestID": requestID,
			})
			return
		}

		zap.L().Error("Failed to check purchase", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"hasPurchased": ok,
	})
}
