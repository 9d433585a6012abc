// Package auth contains the magic link login endpoints
package auth

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/pkg/validators"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type requestLinkBody struct {
	Email    string `json:"email"`
	Redirect string `json:"redirect"`
}

func AuthRequestLink(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data requestLinkBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Cuerpo de la petición inválido",
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

	allowed, remaining, err := d.Limiter.CheckAndConsume(c.Request.Context(), email)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Error interno del servidor",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check magic link rate limit", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !allowed {
		retryAfter := d.Limiter.RetryAfter()

		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":      "Has pedido demasiados enlaces. Inténtalo de nuevo más tarde",
			"retryAfter": retryAfter,
			"requestID":  requestID,
		})
		return
	}

	token, err := d.Issuer.Issue(c.Request.Context(), email, data.Redirect)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     "Introduce un email válido",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Error interno del servidor",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue magic link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	link := d.BaseURL + "/api/auth/verify?token=" + url.QueryEscape(token)

	if err := d.Mailer.SendMagicLink(c.Request.Context(), email, link, d.Issuer.TTL()); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "No pudimos enviar el email. Inténtalo de nuevo en unos minutos",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send magic link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Te hemos enviado un enlace de acceso. Revisa tu bandeja de entrada",
		"remaining": remaining,
	})
}
