package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const SessionCookie = "session"

// ErrNoSession must be returned by SessionVerifier for tokens that don't map
// to a session. Any other error is treated as a store failure.
var ErrNoSession = errors.New("no session")

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// SessionVerifierFunc adapts a function to SessionVerifier
type SessionVerifierFunc func(ctx context.Context, token string) (string, error)

func (f SessionVerifierFunc) Verify(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// NewSessionMiddleware resolves the session cookie and sets email on the
// context. Requests without a valid session pass through anonymously.
func NewSessionMiddleware(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		email, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrNoSession) {
				zap.L().Error("Failed to resolve session", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
			}

			c.Next()
			return
		}

		c.Set("email", email)
		c.Next()
	}
}

// RequireSession aborts with 401 unless NewSessionMiddleware resolved an email
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("email") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "No has iniciado sesión",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
