// Package app wires the HTTP API together
package app

import (
	"claudecode-es/backend/app/auth"
	"claudecode-es/backend/app/gate"
	"claudecode-es/backend/app/lead"
	"claudecode-es/backend/app/license"
	"claudecode-es/backend/app/progress"
	"claudecode-es/backend/app/purchase"
	"claudecode-es/backend/app/root"
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/pkg/middleware"
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type RouterOptions struct {
	CORSOrigins []string
	// RateLimit is requests per second per IP, 0 disables it
	RateLimit int
	Turnstile middleware.TurnstileConfig
}

// NewRouter builds the gin engine. ctx bounds the background cleanup of the
// per IP limiter.
func NewRouter(ctx context.Context, d *internal.Deps, o RouterOptions) *gin.Engine {
	router := gin.New()

	// cors refuses an empty origin list, same origin deployments don't need it
	if len(o.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     o.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.NewSessionMiddleware(sessionVerifier(d.Sessions)),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("email"); v != "" {
					fields = append(fields, zap.String("email", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: o.RateLimit,
		Burst:             o.RateLimit * 2,
	})
	limiter.StartCleanup(ctx)

	requireSession := middleware.RequireSession()
	turnstile := middleware.NewTurnstileMiddleware(o.Turnstile)

	m := router.Group("/api", limiter.Middleware(), middleware.BodySizeLimiter(1<<20))
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/heartbeat		-> Also checks the store and the database
		m.GET("/heartbeat", func(c *gin.Context) { root.Health(c, d) })

		// POST /api/leads		-> Captures an email for the free content gate
		m.POST("/leads", func(c *gin.Context) { lead.LeadCapture(c, d) })
	}

	a := m.Group("/auth")
	{
		// POST /api/auth/magic-link	-> Emails a single use login link
		a.POST("/magic-link", turnstile, func(c *gin.Context) { auth.AuthRequestLink(c, d) })

		// GET /api/auth/verify		-> Consumes a login link and starts a session
		a.GET("/verify", func(c *gin.Context) { auth.AuthVerify(c, d) })

		// GET /api/auth/session	-> Returns the current user, if any
		a.GET("/session", func(c *gin.Context) { auth.AuthSession(c, d) })

		// POST /api/auth/logout	-> Ends the current session
		a.POST("/logout", func(c *gin.Context) { auth.AuthLogout(c, d) })
	}

	p := m.Group("/progress", requireSession)
	{
		// GET /api/progress		-> Returns the lessons completed by the user
		p.GET("", func(c *gin.Context) { progress.ProgressFetch(c, d) })

		// POST /api/progress		-> Marks a lesson as completed
		p.POST("", func(c *gin.Context) { progress.ProgressComplete(c, d) })
	}

	g := m.Group("/access")
	{
		// POST /api/access/whitelist	-> Checks an email against the allow list
		g.POST("/whitelist", func(c *gin.Context) { gate.GateWhitelist(c, d) })

		// GET /api/access/:bundle	-> Evaluates the gates of a content bundle
		g.GET("/:bundle", func(c *gin.Context) { gate.GateBundle(c, d) })
	}

	// POST /api/purchases/check	-> Checks whether an email bought a product
	m.POST("/purchases/check", func(c *gin.Context) { purchase.PurchaseCheck(c, d) })

	// POST /api/license/validate	-> Validates a license key
	m.POST("/license/validate", func(c *gin.Context) { license.LicenseValidate(c, d) })

	return router
}

func sessionVerifier(s *service.SessionManager) middleware.SessionVerifier {
	return middleware.SessionVerifierFunc(func(ctx context.Context, token string) (string, error) {
		email, err := s.Verify(ctx, token)
		if errors.Is(err, service.ErrUnauthenticated) {
			return "", middleware.ErrNoSession
		}

		return email, err
	})
}
