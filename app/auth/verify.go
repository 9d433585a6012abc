package auth

import (
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/pkg/middleware"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginPage is where failed verifications are sent, with an error code in
// the query string
const LoginPage = "/acceso"

func failVerify(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, LoginPage+"?error="+code)
}

// AuthVerify consumes the magic link token, starts a session and redirects
// to where the user was going. It always answers with a redirect.
func AuthVerify(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	ctx := c.Request.Context()

	rec, err := d.Issuer.Verify(ctx, c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenInvalid):
			failVerify(c, "token_invalido")
		case errors.Is(err, service.ErrTokenExpired):
			failVerify(c, "token_expirado")
		default:
			failVerify(c, "error_verificacion")
			zap.L().Error("Failed to verify magic link", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	if _, err := d.Users.Upsert(ctx, rec.Email); err != nil {
		failVerify(c, "error_verificacion")
		zap.L().Error("Failed to upsert user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	session, err := d.Sessions.Create(ctx, rec.Email)
	if err != nil {
		failVerify(c, "error_verificacion")
		zap.L().Error("Failed to create session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if d.LoginHistory != nil {
		if err := d.LoginHistory.Record(ctx, rec.Email, c.ClientIP(), c.Request.UserAgent()); err != nil {
			zap.L().Warn("Failed to record login", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	d.SetCookie(c, middleware.SessionCookie, session, int(d.Sessions.TTL().Seconds()), true)
	c.Set("email", rec.Email)
	c.Redirect(http.StatusFound, rec.Redirect)
}
