package gate

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/access"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GateBundle runs the access chain configured for :bundle with whatever the
// request carries: the session, a captured email and a cached license key.
func GateBundle(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	bundle := c.Param("bundle")

	if !d.Gates.Has(bundle) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Contenido no encontrado",
			"requestID": requestID,
		})
		return
	}

	r := &access.Request{
		Email:         c.GetString("email"),
		CapturedEmail: d.Cookie(c, internal.CapturedEmailCookie),
		LicenseKey:    d.Cookie(c, internal.LicenseCookie),
	}

	ok, err := d.Gates.Evaluate(c.Request.Context(), bundle, r)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Contenido no encontrado",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bundle":    bundle,
		"hasAccess": ok,
	})
}

