// Package license validates license keys and caches good ones in a cookie
package license

import (
	"claudecode-es/backend/internal"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type validateBody struct {
	LicenseKey string `json:"licenseKey" binding:"max=256"`
}

func LicenseValidate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data validateBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Cuerpo de la petición inválido",
				"requestID": requestID,
			})
			return
		}
	}

	key := strings.TrimSpace(data.LicenseKey)
	fromCookie := false
	if key == "" {
		key = d.Cookie(c, internal.LicenseCookie)
		fromCookie = key != ""
	}

	if key == "" {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
		})
		return
	}

	valid, err := d.Licenses.Validate(c.Request.Context(), key)
	if err != nil {
		// keep whatever cookie there is, the key may well be fine
		zap.L().Error("Failed to validate license", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusOK, gin.H{
			"valid": false,
		})
		return
	}

	switch {
	case valid:
		d.SetLongCookie(c, internal.LicenseCookie, key, true)
	case fromCookie:
		d.SetCookie(c, internal.LicenseCookie, "", -1, true)
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": valid,
	})
}
